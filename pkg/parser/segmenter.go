package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// dofDateLayout is the fixed dd-mm-yyyy date format used by DOF reform
// annotations.
const dofDateLayout = "02-01-2006"

// SegmenterConfig tunes article boundary detection and per-article
// scoring. Zero values are replaced by defaults in NewSegmenter.
type SegmenterConfig struct {
	// ShortBodyLength is the body length below which confidence is
	// penalized (default 50).
	ShortBodyLength int

	// DerogationMaxLength is the maximum cleaned-body length at which
	// an explicit repeal phrasing marks the article derogated
	// (default 100). Longer bodies are never auto-flagged.
	DerogationMaxLength int
}

// DefaultSegmenterConfig returns the default segmenter configuration.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		ShortBodyLength:     50,
		DerogationMaxLength: 100,
	}
}

// Segmenter finds article boundaries in a document body, captures
// article text, strips reform annotations, flags derogated stubs, and
// scores per-article confidence. A Segmenter is read-only after
// construction and safe for concurrent use.
type Segmenter struct {
	cfg SegmenterConfig

	articleStart      *regexp.Regexp
	reformAnnotation  *regexp.Regexp
	derogationPhrases []*regexp.Regexp
	transitionPhrases []string
}

// NewSegmenter creates a segmenter with compiled pattern state.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	if cfg.ShortBodyLength == 0 {
		cfg.ShortBodyLength = 50
	}
	if cfg.DerogationMaxLength == 0 {
		cfg.DerogationMaxLength = 100
	}
	return &Segmenter{
		cfg: cfg,

		// Article identifiers are a plain number, an ordinal-marked
		// number ("1o."), or a number with a letter suffix ("27-A",
		// "27 A"), always followed by separating punctuation.
		articleStart: regexp.MustCompile(
			`(?i)^art[ií]culo\s+(\d+)\s*(?:[oº°]\.?)?\s*(?:[-\s]\s*([A-Z]))?\s*[.:\-–—]+\s*`),

		// "<structural noun> <reform verb> DOF <dd-mm-yyyy>", any
		// grammatical gender, accented or not.
		reformAnnotation: regexp.MustCompile(
			`(?i)\b(art[ií]culo|fracci[oó]n|p[aá]rrafo|inciso|cap[ií]tulo|t[ií]tulo)\s+` +
				`(reformad[oa]|adicionad[oa]|derogad[oa]|abrogad[oa]|modificad[oa]|sustituid[oa])\s+` +
				`DOF\s+(\d{2}-\d{2}-\d{4})`),

		// The explicit repeal phrasings that mark a short body as a
		// derogation stub.
		derogationPhrases: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\(?\s*derogad[oa]\s*[.)]*\s*$`),
			regexp.MustCompile(`(?i)^se\s+deroga\b`),
			regexp.MustCompile(`(?i)\(\s*derogad[oa]\s*\)`),
		},

		transitionPhrases: []string{
			"de conformidad con",
			"en los términos",
			"en los terminos",
			"para los efectos",
			"sin perjuicio de",
		},
	}
}

// Segment walks the full ordered line sequence of a document body and
// returns the classified element stream: structural headers interleaved
// with captured articles, in document order.
//
// Article bodies are consumed greedily until another article start or a
// book/title/chapter start, whichever comes first. Section and part
// headers inside an article body are treated as body text.
func (s *Segmenter) Segment(lines []string, classifier *Classifier) []legaldoc.ParsedElement {
	var elements []legaldoc.ParsedElement

	var current *legaldoc.ParsedElement
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Article = s.buildArticle(current.ID, strings.Join(body, "\n"))
		elements = append(elements, *current)
		current = nil
		body = nil
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if loc := s.articleStart.FindStringSubmatchIndex(line); loc != nil {
			flush()
			id := articleID(line, loc)
			current = &legaldoc.ParsedElement{
				Type: legaldoc.ElementArticle,
				ID:   id,
				Line: i,
				Raw:  line[loc[0]:loc[1]],
			}
			if n := leadingNumber(id); n > 0 {
				current.Number = n
			}
			if rest := strings.TrimSpace(line[loc[1]:]); rest != "" {
				body = append(body, rest)
			}
			continue
		}

		// Reform annotation lines start with a structural noun
		// ("Capítulo reformado DOF ...") and would otherwise look
		// like headers to the classifier. They belong to the body,
		// where extraction strips them.
		if s.reformAnnotation.MatchString(line) {
			if current != nil {
				body = append(body, line)
			}
			continue
		}

		if m, ok := classifier.Classify(line); ok {
			closes := m.Type == legaldoc.ElementBook ||
				m.Type == legaldoc.ElementTitle ||
				m.Type == legaldoc.ElementChapter
			if current != nil && !closes {
				body = append(body, line)
				continue
			}
			flush()
			elements = append(elements, legaldoc.ParsedElement{
				Type:    m.Type,
				ID:      m.Token,
				Number:  m.Number,
				Heading: m.Heading,
				Line:    i,
				Raw:     line[m.Start:m.End],
			})
			continue
		}

		if current != nil && line != "" {
			body = append(body, line)
		}
	}
	flush()

	return elements
}

// articleID normalizes the captured identifier: letter suffixes attach
// with a hyphen ("27 A" becomes "27-A").
func articleID(line string, loc []int) string {
	id := line[loc[2]:loc[3]]
	if loc[4] >= 0 {
		id = fmt.Sprintf("%s-%s", id, strings.ToUpper(line[loc[4]:loc[5]]))
	}
	return id
}

// buildArticle cleans a raw article body and computes its metadata.
func (s *Segmenter) buildArticle(id, rawBody string) *legaldoc.Article {
	body, reforms := s.extractReforms(rawBody)
	body = collapseBlank(body)

	return &legaldoc.Article{
		ID:         id,
		Body:       body,
		Reforms:    reforms,
		Derogated:  s.isDerogated(body),
		Confidence: s.scoreConfidence(body),
	}
}

// extractReforms records every reform annotation in the body, then
// deletes it. The annotations survive as structured metadata on the
// article.
func (s *Segmenter) extractReforms(body string) (string, []legaldoc.ReformAnnotation) {
	var reforms []legaldoc.ReformAnnotation

	matches := s.reformAnnotation.FindAllStringSubmatch(body, -1)
	for _, m := range matches {
		date, err := time.Parse(dofDateLayout, m[3])
		if err != nil {
			// Malformed dates keep the annotation out of the body
			// but leave the date zero.
			date = time.Time{}
		}
		reforms = append(reforms, legaldoc.ReformAnnotation{
			Element: normalizeOrdinalWord(m[1]),
			Action:  normalizeReformVerb(m[2]),
			Date:    date,
			Raw:     m[0],
		})
	}

	cleaned := s.reformAnnotation.ReplaceAllString(body, "")
	return strings.TrimSpace(cleaned), reforms
}

// normalizeReformVerb lowercases a reform verb and folds feminine forms
// to the masculine dictionary form.
func normalizeReformVerb(v string) string {
	v = normalizeOrdinalWord(v)
	if strings.HasSuffix(v, "a") {
		v = v[:len(v)-1] + "o"
	}
	return v
}

// isDerogated reports whether the cleaned body is an explicit repeal
// stub. Only short bodies qualify; a repeal phrase inside longer
// narrative text never auto-flags the article.
func (s *Segmenter) isDerogated(body string) bool {
	if len(body) >= s.cfg.DerogationMaxLength {
		return false
	}
	for _, re := range s.derogationPhrases {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

// scoreConfidence estimates extraction correctness for one article.
func (s *Segmenter) scoreConfidence(body string) float64 {
	score := 1.0
	if len(body) < s.cfg.ShortBodyLength {
		score -= 0.1
	}
	if !hasTerminalPunctuation(body) {
		score -= 0.2
	}
	lower := strings.ToLower(body)
	for _, phrase := range s.transitionPhrases {
		if strings.Contains(lower, phrase) {
			score += 0.05
			break
		}
	}
	return legaldoc.Clamp(score, 0, 1)
}

// hasTerminalPunctuation reports whether the body ends in sentence
// punctuation.
func hasTerminalPunctuation(body string) bool {
	body = strings.TrimSpace(body)
	if body == "" {
		return false
	}
	switch body[len(body)-1] {
	case '.', ';', ':', ')', '"':
		return true
	}
	return strings.HasSuffix(body, "»")
}

// collapseBlank trims trailing whitespace per line and collapses runs
// of blank lines left behind by annotation removal.
func collapseBlank(body string) string {
	lines := strings.Split(body, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if strings.TrimSpace(l) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// leadingNumber parses the leading digit run of an article identifier,
// dropping any letter suffix ("27-A" yields 27).
func leadingNumber(id string) int {
	n := 0
	seen := false
	for _, r := range id {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}
