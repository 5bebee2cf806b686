package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-legal/acervo/pkg/archive"
	"github.com/acervo-legal/acervo/pkg/legaldoc"
	"github.com/acervo-legal/acervo/pkg/parser"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{95, "A"},
		{94.999, "B"},
		{90, "B"},
		{89.999, "C"},
		{80, "C"},
		{79.999, "D"},
		{70, "D"},
		{69.999, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %v", tt.score)
	}
}

func TestScorer_Accuracy(t *testing.T) {
	s := NewScorer(Config{})

	tests := []struct {
		name       string
		found      int
		expected   int
		confidence float64
		want       float64
	}{
		{
			name:       "full coverage full confidence",
			found:      10,
			expected:   10,
			confidence: 1.0,
			want:       100,
		},
		{
			name:       "half coverage",
			found:      5,
			expected:   10,
			confidence: 1.0,
			want:       65, // 0.7*0.5 + 0.3*1.0
		},
		{
			name:       "no expectation drops coverage",
			found:      10,
			expected:   0,
			confidence: 1.0,
			want:       30,
		},
		{
			name:       "over-segmentation penalty",
			found:      12,
			expected:   10,
			confidence: 1.0,
			want:       96.5, // (0.7*0.95 + 0.3)*100
		},
		{
			name:       "within tolerance no penalty",
			found:      11,
			expected:   10,
			confidence: 1.0,
			want:       100,
		},
		{
			name:       "confidence outside range is clamped",
			found:      10,
			expected:   10,
			confidence: 1.7,
			want:       100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.accuracy(tt.found, Input{
				ExpectedArticles: tt.expected,
				Confidence:       tt.confidence,
			})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScorer_ScoreResult_Complete(t *testing.T) {
	s := NewScorer(Config{})

	result := &legaldoc.ParseResult{
		Elements: []legaldoc.ParsedElement{
			{Type: legaldoc.ElementTitle, ID: "I"},
			{Type: legaldoc.ElementChapter, ID: "I"},
			{Type: legaldoc.ElementArticle, ID: "1"},
			{Type: legaldoc.ElementArticle, ID: "2"},
			{Type: legaldoc.ElementArticle, ID: "3"},
			{Type: legaldoc.ElementTransitory, ID: "Primero"},
		},
		Counts: legaldoc.Counts{
			Titles: 1, Chapters: 1, Articles: 3, Transitories: 1,
		},
		Confidence: 0.9875,
	}

	m := s.ScoreResult(result, Input{
		SourceID:         "test",
		ExpectedArticles: 3,
		Confidence:       result.Confidence,
		Elapsed:          time.Second,
	})

	assert.True(t, m.SchemaValid)
	assert.Empty(t, m.Issues)
	assert.Equal(t, 100.0, m.CompletenessScore)
	assert.InDelta(t, 99.625, m.AccuracyScore, 1e-9)
	assert.GreaterOrEqual(t, m.CompletenessScore, 80.0)
	assert.Equal(t, "A", m.Grade)
}

func TestScorer_ScoreResult_MissingPieces(t *testing.T) {
	s := NewScorer(Config{})

	result := &legaldoc.ParseResult{
		Elements: []legaldoc.ParsedElement{
			{Type: legaldoc.ElementArticle, ID: "1"},
		},
		Counts:     legaldoc.Counts{Articles: 1},
		Confidence: 0.7,
	}

	m := s.ScoreResult(result, Input{ExpectedArticles: 1, Confidence: 0.7})

	// 40 for the article, no structure, no transitory, 20-5*2 for the
	// two distinct issue types.
	assert.InDelta(t, 50.0, m.CompletenessScore, 1e-9)
	assert.Len(t, m.Issues, 2)
	assert.Contains(t, m.Issues, "no chapter or title structure found")
	assert.Contains(t, m.Issues, "no transitory articles found")
}

func TestScorer_ScoreResult_Empty(t *testing.T) {
	s := NewScorer(Config{})

	m := s.ScoreResult(&legaldoc.ParseResult{}, Input{})

	assert.False(t, m.SchemaValid)
	assert.InDelta(t, 0.0, m.AccuracyScore, 1e-9)
	// Three issue types: no articles, no structure, no transitory.
	assert.InDelta(t, 5.0, m.CompletenessScore, 1e-9)
	assert.Equal(t, "F", m.Grade)
}

func TestScorer_ScoresStayInRange(t *testing.T) {
	s := NewScorer(Config{})

	inputs := []Input{
		{ExpectedArticles: 1, Confidence: 5.0},
		{ExpectedArticles: 0, Confidence: -3.0},
		{ExpectedArticles: 100, Confidence: 1.0},
	}
	counts := []legaldoc.Counts{
		{},
		{Articles: 500, Chapters: 50, Titles: 10, Transitories: 12},
	}
	for _, in := range inputs {
		for _, c := range counts {
			m := s.score(c, true, nil, in)
			assert.GreaterOrEqual(t, m.AccuracyScore, 0.0)
			assert.LessOrEqual(t, m.AccuracyScore, 100.0)
			assert.GreaterOrEqual(t, m.CompletenessScore, 0.0)
			assert.LessOrEqual(t, m.CompletenessScore, 100.0)
			assert.GreaterOrEqual(t, m.OverallScore, 0.0)
			assert.LessOrEqual(t, m.OverallScore, 100.0)
		}
	}
}

func TestScorer_ScoreDocument(t *testing.T) {
	text := `CAPÍTULO I.- Disposiciones Generales
Artículo 1.- Las disposiciones de esta ley son de orden público e interés social.
Artículo 2.- La aplicación de esta ley corresponde al Ejecutivo Federal.
TRANSITORIOS
Primero.- El presente Decreto entrará en vigor al día siguiente de su publicación.`

	p := parser.New(parser.DefaultConfig())
	result := p.Parse(text)
	doc := archive.Serialize(p.Assemble(result), archive.Metadata{
		DocumentType:    "ley",
		Jurisdiction:    []string{"mx"},
		PublicationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Name:            "Ley de Prueba",
	})

	s := NewScorer(Config{})
	m := s.ScoreDocument(doc, Input{
		ExpectedArticles: 2,
		Confidence:       result.Confidence,
	})

	assert.True(t, m.SchemaValid)
	assert.Equal(t, 2, m.Counts.Articles)
	assert.Equal(t, 1, m.Counts.Transitories)
	assert.Equal(t, 100.0, m.CompletenessScore)
	assert.GreaterOrEqual(t, m.OverallScore, 90.0)
}

func TestStructuralValidator(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &archive.Document{
			Identification: archive.Identification{
				Identity: archive.Identity{
					Work:          "/akn/mx/ley/2024-01-01/x",
					Expression:    "/akn/mx/ley/2024-01-01/x/spa@2024-01-01",
					Manifestation: "/akn/mx/ley/2024-01-01/x/spa@2024-01-01/main.json",
				},
				DocumentType:    "ley",
				Slug:            "x",
				PublicationDate: "2024-01-01",
			},
			Body: archive.Body{Elements: []archive.BodyNode{
				{Type: "article", ID: "1", Text: "Texto."},
			}},
		}
		valid, issues := StructuralValidator{}.ValidateDocument(doc)
		assert.True(t, valid)
		assert.Empty(t, issues)
	})

	t.Run("missing identity and empty body", func(t *testing.T) {
		valid, issues := StructuralValidator{}.ValidateDocument(&archive.Document{})
		assert.False(t, valid)
		assert.NotEmpty(t, issues)
	})

	t.Run("node without identifier", func(t *testing.T) {
		doc := &archive.Document{
			Identification: archive.Identification{
				Identity: archive.Identity{
					Work:          "/akn/mx/ley/2024-01-01/x",
					Expression:    "/akn/mx/ley/2024-01-01/x/spa@2024-01-01",
					Manifestation: "/akn/mx/ley/2024-01-01/x/spa@2024-01-01/main.json",
				},
				DocumentType:    "ley",
				Slug:            "x",
				PublicationDate: "2024-01-01",
			},
			Body: archive.Body{Elements: []archive.BodyNode{
				{Type: "article", Text: "Texto."},
			}},
		}
		valid, issues := StructuralValidator{}.ValidateDocument(doc)
		require.False(t, valid)
		assert.Contains(t, issues, "article node without identifier")
	})
}

func TestCountsChecker(t *testing.T) {
	check := CountsChecker{}

	issues := check.Check(legaldoc.Counts{}, 0)
	types := make([]string, 0, len(issues))
	for _, i := range issues {
		types = append(types, i.Type)
	}
	assert.ElementsMatch(t, []string{IssueNoArticles, IssueNoStructure, IssueNoTransitory}, types)

	issues = check.Check(legaldoc.Counts{Articles: 5, Chapters: 1, Transitories: 1}, 10)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueBelowExpected, issues[0].Type)
	assert.Equal(t, "found 5 of 10 expected articles", issues[0].Description)
}
