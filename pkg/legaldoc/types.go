// Package legaldoc defines the core data model for parsed statute documents:
// structural elements, articles with reform annotations, and parse results.
package legaldoc

import (
	"time"
)

// ElementType identifies a structural category within a statute.
type ElementType string

const (
	ElementBook       ElementType = "book"
	ElementTitle      ElementType = "title"
	ElementPart       ElementType = "part"
	ElementChapter    ElementType = "chapter"
	ElementSection    ElementType = "section"
	ElementArticle    ElementType = "article"
	ElementTransitory ElementType = "transitory"
)

// IsContainer returns true for element types that can hold child elements
// in the assembled hierarchy.
func (t ElementType) IsContainer() bool {
	switch t {
	case ElementBook, ElementTitle, ElementPart, ElementChapter, ElementSection:
		return true
	}
	return false
}

// ParsedElement is one classified element from the document stream.
// For article and transitory elements, Article carries the extracted body
// and per-article metadata.
type ParsedElement struct {
	Type ElementType `json:"type"`

	// ID is the element identifier as it appears in the document
	// (e.g., "27-A" for articles, "III" for a chapter).
	ID string `json:"id"`

	// Number is the resolved numeric value of the identifier.
	// Zero when the numeral could not be resolved.
	Number int `json:"number"`

	// Heading is the heading text following the structural marker, if any.
	Heading string `json:"heading,omitempty"`

	// Line is the zero-based source line where the element starts.
	Line int `json:"line"`

	// Raw is the full matched source text of the element marker.
	Raw string `json:"raw,omitempty"`

	// Article holds article content for article/transitory elements.
	Article *Article `json:"article,omitempty"`
}

// ReformAnnotation records one reform note removed from an article body.
// The note itself is preserved here as structured metadata.
type ReformAnnotation struct {
	// Element is the structural noun named by the annotation
	// (articulo, fraccion, parrafo, inciso, capitulo, titulo).
	Element string `json:"element"`

	// Action is the reform verb (reformado, adicionado, derogado,
	// abrogado, modificado, sustituido), normalized to masculine form.
	Action string `json:"action"`

	// Date is the DOF publication date of the reform.
	Date time.Time `json:"date"`

	// Raw is the original matched annotation text.
	Raw string `json:"raw"`
}

// Article is the extracted content of one article or transitory article.
type Article struct {
	// ID is the article identifier: a plain number ("27"), a
	// letter-suffixed number ("27-A"), or an ordinal word for
	// transitory articles ("Primero").
	ID string `json:"id"`

	// Body is the article text with reform annotations removed.
	Body string `json:"body"`

	// Reforms are the annotations stripped from the raw body.
	Reforms []ReformAnnotation `json:"reforms,omitempty"`

	// Derogated is set when the article body is an explicit repeal stub.
	Derogated bool `json:"derogated"`

	// Confidence estimates extraction correctness in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Counts holds per-type element totals for a parse result.
type Counts struct {
	Books        int `json:"books"`
	Titles       int `json:"titles"`
	Parts        int `json:"parts"`
	Chapters     int `json:"chapters"`
	Sections     int `json:"sections"`
	Articles     int `json:"articles"`
	Transitories int `json:"transitories"`
	Annotations  int `json:"annotations"`
}

// ParseResult is the complete output of one parse call. It is created
// fresh per call and must not be mutated after being returned.
type ParseResult struct {
	// Elements is the document-ordered stream of classified elements.
	// Transitory articles appear after the main body, sorted by their
	// resolved ordinal value.
	Elements []ParsedElement `json:"elements"`

	// Confidence is the aggregate parser confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Warnings are advisory findings in emission order (missing
	// sections, numbering gaps, duplicate identifiers). They never
	// indicate failure.
	Warnings []string `json:"warnings,omitempty"`

	// Counts are element totals by type.
	Counts Counts `json:"counts"`
}

// Articles returns the main-body articles in element order.
func (r *ParseResult) Articles() []*Article {
	var out []*Article
	for i := range r.Elements {
		if r.Elements[i].Type == ElementArticle && r.Elements[i].Article != nil {
			out = append(out, r.Elements[i].Article)
		}
	}
	return out
}

// Transitories returns the transitory articles in element order.
func (r *ParseResult) Transitories() []*Article {
	var out []*Article
	for i := range r.Elements {
		if r.Elements[i].Type == ElementTransitory && r.Elements[i].Article != nil {
			out = append(out, r.Elements[i].Article)
		}
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
