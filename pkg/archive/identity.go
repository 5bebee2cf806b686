// Package archive emits the canonical archival document: a hierarchical
// body plus three-level identity metadata in the work, expression,
// manifestation scheme.
package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
)

// Metadata is the archival identity record supplied alongside a
// document's raw text.
type Metadata struct {
	// DocumentType is the normative type slug (e.g., "ley", "codigo",
	// "reglamento").
	DocumentType string

	// Jurisdiction is the jurisdiction path, most general first
	// (e.g., ["mx"], ["mx", "cdmx"]).
	Jurisdiction []string

	// PublicationDate is the official publication date.
	PublicationDate time.Time

	// Name is the document's display name, used to derive Slug when
	// Slug is empty.
	Name string

	// Slug is the URI path slug. Derived from Name when empty.
	Slug string

	// Language is the ISO 639 language code of the expression.
	// Defaults to "spa".
	Language string

	// Format is the manifestation file format. Defaults to "json".
	Format string

	// ExpectedArticles is the expected article count for quality
	// scoring, zero when unknown.
	ExpectedArticles int
}

// Identity carries the three distinct archival URIs: the work identity
// is language- and format-independent, the expression identity is bound
// to one language, and the manifestation identity is bound to one file
// format.
type Identity struct {
	Work          string `json:"work"`
	Expression    string `json:"expression"`
	Manifestation string `json:"manifestation"`
}

const (
	defaultLanguage = "spa"
	defaultFormat   = "json"
	identityDate    = "2006-01-02"
)

// BuildIdentity builds the three identity URIs by template substitution
// of the jurisdiction path, document type, publication date, and slug.
//
//	work:          /akn/{jurisdiction...}/{type}/{date}/{slug}
//	expression:    {work}/{lang}@{date}
//	manifestation: {expression}/main.{format}
func BuildIdentity(meta Metadata) Identity {
	jurisdiction := strings.Join(meta.Jurisdiction, "/")
	if jurisdiction == "" {
		jurisdiction = "mx"
	}
	date := meta.PublicationDate.Format(identityDate)

	work := fmt.Sprintf("/akn/%s/%s/%s/%s",
		jurisdiction, meta.DocumentType, date, meta.ResolvedSlug())
	expression := fmt.Sprintf("%s/%s@%s", work, meta.ResolvedLanguage(), date)
	manifestation := fmt.Sprintf("%s/main.%s", expression, meta.ResolvedFormat())

	return Identity{
		Work:          work,
		Expression:    expression,
		Manifestation: manifestation,
	}
}

// ResolvedSlug returns the explicit slug, or one derived from Name by
// accent folding and kebab-case normalization.
func (m Metadata) ResolvedSlug() string {
	if m.Slug != "" {
		return m.Slug
	}
	return Slugify(m.Name)
}

// ResolvedLanguage returns the language code, defaulted.
func (m Metadata) ResolvedLanguage() string {
	if m.Language != "" {
		return m.Language
	}
	return defaultLanguage
}

// ResolvedFormat returns the manifestation format, defaulted.
func (m Metadata) ResolvedFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return defaultFormat
}

var slugAccents = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

// Slugify folds accents and normalizes a document name to a kebab-case
// URI slug.
func Slugify(name string) string {
	folded := slugAccents.Replace(strings.TrimSpace(name))
	return strcase.ToKebab(folded)
}
