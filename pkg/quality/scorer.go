// Package quality computes multi-factor quality metrics for parsed
// statute documents: accuracy, completeness, and schema validity folded
// into a weighted overall score and letter grade.
package quality

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/acervo-legal/acervo/pkg/archive"
	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// Metrics is the immutable quality record derived from one parse.
type Metrics struct {
	Counts legaldoc.Counts `json:"counts"`

	AccuracyScore     float64 `json:"accuracy_score"`
	CompletenessScore float64 `json:"completeness_score"`
	SchemaValid       bool    `json:"schema_valid"`

	Issues []string `json:"issues,omitempty"`

	OverallScore float64 `json:"overall_score"`
	Grade        string  `json:"grade"`
}

// Input carries the scoring context for one document.
type Input struct {
	// SourceID identifies the scored document in logs.
	SourceID string

	// ExpectedArticles is the expected article count, zero when
	// unknown. With no expectation, coverage contributes nothing.
	ExpectedArticles int

	// Confidence is the aggregate parser confidence in [0, 1].
	Confidence float64

	// Elapsed is processing duration, recorded for observability only.
	Elapsed time.Duration
}

// Config holds scorer construction options.
type Config struct {
	Schema       SchemaValidator
	Completeness CompletenessChecker
	Logger       hclog.Logger
}

// Scorer computes quality metrics from either an in-memory parse result
// or an already-serialized archival document. Stateless and safe for
// concurrent use.
type Scorer struct {
	schema       SchemaValidator
	completeness CompletenessChecker
	logger       hclog.Logger
}

// NewScorer creates a scorer; nil validators fall back to the defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg.Schema == nil {
		cfg.Schema = StructuralValidator{}
	}
	if cfg.Completeness == nil {
		cfg.Completeness = CountsChecker{}
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Scorer{
		schema:       cfg.Schema,
		completeness: cfg.Completeness,
		logger:       cfg.Logger.Named("quality"),
	}
}

// ScoreDocument scores a serialized archival document.
func (s *Scorer) ScoreDocument(doc *archive.Document, in Input) Metrics {
	valid, issues := s.schema.ValidateDocument(doc)
	return s.score(doc.Counts(), valid, issues, in)
}

// ScoreResult scores an in-memory parse result. Schema validity here
// reflects the parse stream itself: at least one article, each with an
// identifier.
func (s *Scorer) ScoreResult(result *legaldoc.ParseResult, in Input) Metrics {
	valid := result.Counts.Articles > 0
	var issues []string
	for _, el := range result.Elements {
		if el.Type == legaldoc.ElementArticle && el.ID == "" {
			valid = false
			issues = append(issues, "article without identifier")
		}
	}
	return s.score(result.Counts, valid, issues, in)
}

// score folds the sub-scores into the weighted overall grade.
func (s *Scorer) score(counts legaldoc.Counts, schemaValid bool, issues []string, in Input) Metrics {
	m := Metrics{
		Counts:      counts,
		SchemaValid: schemaValid,
		Issues:      issues,
	}

	m.AccuracyScore = s.accuracy(counts.Articles, in)
	m.CompletenessScore = s.completenessScore(counts, in.ExpectedArticles, &m)

	schemaScore := 0.0
	if schemaValid {
		schemaScore = 100
	}
	m.OverallScore = 0.5*m.AccuracyScore + 0.3*m.CompletenessScore + 0.2*schemaScore
	m.Grade = GradeFor(m.OverallScore)

	s.logger.Debug("scored document",
		"source", in.SourceID,
		"accuracy", m.AccuracyScore,
		"completeness", m.CompletenessScore,
		"schema_valid", m.SchemaValid,
		"overall", m.OverallScore,
		"grade", m.Grade,
		"elapsed", in.Elapsed,
	)
	return m
}

// accuracy blends article coverage against the expected count with the
// aggregate parser confidence. Finding substantially more articles than
// expected suggests over-segmentation and is mildly penalized.
func (s *Scorer) accuracy(found int, in Input) float64 {
	coverage := 0.0
	if in.ExpectedArticles > 0 {
		coverage = float64(found) / float64(in.ExpectedArticles)
		if coverage > 1 {
			coverage = 1
		}
		if float64(found) > float64(in.ExpectedArticles)*1.1 {
			coverage *= 0.95
		}
	}
	confidence := legaldoc.Clamp(in.Confidence, 0, 1)
	return legaldoc.Clamp((0.7*coverage+0.3*confidence)*100, 0, 100)
}

// completenessScore is additive: 40 for any article, 20 for chapter or
// title structure, 20 for any transitory record, and a final band of 20
// reduced by 5 per distinct completeness-issue type (floor 0).
func (s *Scorer) completenessScore(counts legaldoc.Counts, expected int, m *Metrics) float64 {
	score := 0.0
	if counts.Articles > 0 {
		score += 40
	}
	if counts.Chapters > 0 || counts.Titles > 0 {
		score += 20
	}
	if counts.Transitories > 0 {
		score += 20
	}

	if s.completeness == nil {
		return legaldoc.Clamp(score+20, 0, 100)
	}

	issues := s.completeness.Check(counts, expected)
	types := make(map[string]bool)
	for _, issue := range issues {
		types[issue.Type] = true
		m.Issues = append(m.Issues, issue.Description)
	}
	band := 20 - 5*float64(len(types))
	if band < 0 {
		band = 0
	}
	return legaldoc.Clamp(score+band, 0, 100)
}

// Grade thresholds are fixed.
const (
	gradeA = 95
	gradeB = 90
	gradeC = 80
	gradeD = 70
)

// GradeFor maps an overall score to its letter grade.
func GradeFor(score float64) string {
	switch {
	case score >= gradeA:
		return "A"
	case score >= gradeB:
		return "B"
	case score >= gradeC:
		return "C"
	case score >= gradeD:
		return "D"
	}
	return "F"
}
