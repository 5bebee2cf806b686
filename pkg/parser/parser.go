// Package parser recovers the hierarchical structure of statute text:
// it classifies structural headers, segments articles, isolates the
// transitory-articles section, and assembles the element stream into a
// document tree.
package parser

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// Config holds parser construction options.
type Config struct {
	Segmenter SegmenterConfig
	Logger    hclog.Logger
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() Config {
	return Config{
		Segmenter: DefaultSegmenterConfig(),
	}
}

// Parser drives a full structural parse. All pattern state is held on
// the instance, so independent parsers never share mutable state and a
// single Parser is safe to use concurrently across documents.
type Parser struct {
	classifier   *Classifier
	segmenter    *Segmenter
	transitorios *TransitoriosParser
	logger       hclog.Logger
}

// New creates a parser from cfg.
func New(cfg Config) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Parser{
		classifier:   NewClassifier(),
		segmenter:    NewSegmenter(cfg.Segmenter),
		transitorios: NewTransitoriosParser(),
		logger:       logger.Named("parser"),
	}
}

// Parse runs the full structural parse over raw statute text. It never
// fails: unrecognizable markup degrades to a valid, possibly empty and
// low-confidence result with warnings. The returned ParseResult is
// fresh per call and must not be mutated.
func (p *Parser) Parse(text string) *legaldoc.ParseResult {
	result := &legaldoc.ParseResult{}

	lines := splitLines(text)

	mainLines := lines
	var tail []string
	headerIdx := p.transitorios.HeaderIndex(lines)
	if headerIdx >= 0 {
		mainLines = lines[:headerIdx]
		tail = lines[headerIdx+1:]
	}

	result.Elements = p.segmenter.Segment(mainLines, p.classifier)

	var trans []legaldoc.ParsedElement
	if len(tail) > 0 {
		trans = p.transitorios.Parse(strings.Join(tail, "\n"))
		result.Elements = append(result.Elements, trans...)
	}
	switch {
	case headerIdx < 0:
		result.Warnings = append(result.Warnings, "no transitory-articles section found")
	case len(trans) == 0:
		result.Warnings = append(result.Warnings, "transitory-articles section is empty")
	}

	result.Counts = countElements(result.Elements)
	result.Confidence = aggregateConfidence(result.Elements)
	result.Warnings = append(result.Warnings, p.structureWarnings(result)...)

	p.logger.Debug("parsed document",
		"articles", result.Counts.Articles,
		"transitories", result.Counts.Transitories,
		"confidence", result.Confidence,
		"warnings", len(result.Warnings),
	)

	return result
}

// Assemble builds the canonical hierarchy tree for a parse result.
func (p *Parser) Assemble(result *legaldoc.ParseResult) *Tree {
	return Assemble(result.Elements)
}

// structureWarnings collects the advisory findings for a completed
// element stream: numbering gaps and duplicate article identifiers.
func (p *Parser) structureWarnings(result *legaldoc.ParseResult) []string {
	var warnings []string

	var ids []string
	seen := make(map[string]bool)
	for _, el := range result.Elements {
		if el.Type != legaldoc.ElementArticle {
			continue
		}
		ids = append(ids, el.ID)
		if seen[el.ID] {
			// Scan artifacts can produce two entries for the same
			// article. Both are kept; the duplicate is flagged so
			// downstream stores can decide.
			warnings = append(warnings, fmt.Sprintf(
				"duplicate article identifier: %s", el.ID))
		}
		seen[el.ID] = true
	}

	warnings = append(warnings, DetectGaps(ids)...)
	return warnings
}

// aggregateConfidence is the mean of per-article confidences, zero for
// a document with no captured articles.
func aggregateConfidence(elements []legaldoc.ParsedElement) float64 {
	sum := 0.0
	n := 0
	for _, el := range elements {
		if el.Article == nil {
			continue
		}
		sum += el.Article.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return legaldoc.Clamp(sum/float64(n), 0, 1)
}

// countElements totals the element stream by type.
func countElements(elements []legaldoc.ParsedElement) legaldoc.Counts {
	var c legaldoc.Counts
	for _, el := range elements {
		switch el.Type {
		case legaldoc.ElementBook:
			c.Books++
		case legaldoc.ElementTitle:
			c.Titles++
		case legaldoc.ElementPart:
			c.Parts++
		case legaldoc.ElementChapter:
			c.Chapters++
		case legaldoc.ElementSection:
			c.Sections++
		case legaldoc.ElementArticle:
			c.Articles++
		case legaldoc.ElementTransitory:
			c.Transitories++
		}
		if el.Article != nil {
			c.Annotations += len(el.Article.Reforms)
		}
	}
	return c
}

// splitLines normalizes line endings and splits the document.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
