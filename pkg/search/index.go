// Package search defines the flattened per-article records handed to a
// search index, with hierarchy breadcrumbs preserved from the archival
// document.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/acervo-legal/acervo/pkg/archive"
	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// ArticleRecord is one flattened article ready for indexing.
type ArticleRecord struct {
	// ObjectID uniquely identifies the record within the index:
	// "{slug}/{article id}".
	ObjectID string `json:"object_id"`

	// Slug identifies the owning document.
	Slug string `json:"slug"`

	// ArticleID is the article identifier within the document.
	ArticleID string `json:"article_id"`

	// Type is "article" or "transitory".
	Type string `json:"type"`

	// Breadcrumbs is the hierarchy trail from root to the article's
	// parent ("Título Primero > Capítulo II").
	Breadcrumbs string `json:"breadcrumbs,omitempty"`

	Text       string  `json:"text"`
	Derogated  bool    `json:"derogated"`
	Confidence float64 `json:"confidence"`
}

// Indexer receives flattened article records. Implementations live in
// the adapters subpackages.
type Indexer interface {
	Index(ctx context.Context, records []ArticleRecord) error
	Search(ctx context.Context, query string, limit int) ([]ArticleRecord, error)
	Close() error
}

// Flatten walks an archival document depth-first and emits one record
// per article and transitory, each carrying its hierarchy breadcrumb
// trail.
func Flatten(doc *archive.Document) []ArticleRecord {
	slug := doc.Identification.Slug
	var records []ArticleRecord

	var rec func(nodes []archive.BodyNode, trail []string)
	rec = func(nodes []archive.BodyNode, trail []string) {
		for i := range nodes {
			n := &nodes[i]
			if !legaldoc.ElementType(n.Type).IsContainer() {
				records = append(records, ArticleRecord{
					ObjectID:    fmt.Sprintf("%s/%s", slug, n.ID),
					Slug:        slug,
					ArticleID:   n.ID,
					Type:        n.Type,
					Breadcrumbs: strings.Join(trail, " > "),
					Text:        n.Text,
					Derogated:   n.Derogated,
					Confidence:  n.Confidence,
				})
				continue
			}

			next := make([]string, len(trail)+1)
			copy(next, trail)
			next[len(trail)] = breadcrumbLabel(n)
			rec(n.Children, next)
		}
	}
	rec(doc.Body.Elements, nil)

	return records
}

// breadcrumbLabel renders one container node for the breadcrumb trail.
func breadcrumbLabel(n *archive.BodyNode) string {
	var prefix string
	switch legaldoc.ElementType(n.Type) {
	case legaldoc.ElementBook:
		prefix = "Libro"
	case legaldoc.ElementTitle:
		prefix = "Título"
	case legaldoc.ElementPart:
		prefix = "Parte"
	case legaldoc.ElementChapter:
		prefix = "Capítulo"
	case legaldoc.ElementSection:
		prefix = "Sección"
	default:
		prefix = n.Type
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", prefix, n.ID))
}
