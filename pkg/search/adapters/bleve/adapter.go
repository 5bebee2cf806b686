// Package bleve implements search.Indexer over an embedded Bleve
// full-text index.
package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/acervo-legal/acervo/pkg/search"
)

// Adapter implements search.Indexer for Bleve.
type Adapter struct {
	index bleve.Index
	path  string
}

// Config contains Bleve configuration.
type Config struct {
	// IndexPath is the directory holding the article index.
	IndexPath string
}

// NewAdapter opens or creates the article index.
func NewAdapter(cfg *Config) (*Adapter, error) {
	if cfg.IndexPath == "" {
		return nil, fmt.Errorf("bleve index path required")
	}
	if err := os.MkdirAll(cfg.IndexPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	path := filepath.Join(cfg.IndexPath, "articles.bleve")
	idx, err := openOrCreateIndex(path, createArticleMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to open articles index: %w", err)
	}

	return &Adapter{index: idx, path: path}, nil
}

// openOrCreateIndex opens an existing Bleve index or creates a new one.
func openOrCreateIndex(path string, indexMapping mapping.IndexMapping) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.New(path, indexMapping)
	}
	return idx, err
}

// createArticleMapping creates the index mapping for article records.
func createArticleMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	// Queries without an explicit field are analyzed with the default
	// analyzer; it must match the text fields' analyzer or stemmed
	// terms never hit.
	indexMapping.DefaultAnalyzer = "es"

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "es"

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	articleMapping := bleve.NewDocumentMapping()
	articleMapping.AddFieldMappingsAt("text", textFieldMapping)
	articleMapping.AddFieldMappingsAt("breadcrumbs", textFieldMapping)
	articleMapping.AddFieldMappingsAt("slug", keywordFieldMapping)
	articleMapping.AddFieldMappingsAt("article_id", keywordFieldMapping)
	articleMapping.AddFieldMappingsAt("type", keywordFieldMapping)

	indexMapping.DefaultMapping = articleMapping
	return indexMapping
}

// Index implements search.Indexer.
func (a *Adapter) Index(ctx context.Context, records []search.ArticleRecord) error {
	batch := a.index.NewBatch()
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(r.ObjectID, r); err != nil {
			return fmt.Errorf("failed to batch record %s: %w", r.ObjectID, err)
		}
	}
	if err := a.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index batch: %w", err)
	}
	return nil
}

// Search implements search.Indexer with a match query over the indexed
// fields.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]search.ArticleRecord, error) {
	if limit <= 0 {
		limit = 25
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"*"}

	res, err := a.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	records := make([]search.ArticleRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		records = append(records, recordFromFields(hit.ID, hit.Fields))
	}
	return records, nil
}

// recordFromFields rebuilds an ArticleRecord from stored hit fields.
func recordFromFields(id string, fields map[string]interface{}) search.ArticleRecord {
	r := search.ArticleRecord{ObjectID: id}
	if v, ok := fields["slug"].(string); ok {
		r.Slug = v
	}
	if v, ok := fields["article_id"].(string); ok {
		r.ArticleID = v
	}
	if v, ok := fields["type"].(string); ok {
		r.Type = v
	}
	if v, ok := fields["breadcrumbs"].(string); ok {
		r.Breadcrumbs = v
	}
	if v, ok := fields["text"].(string); ok {
		r.Text = v
	}
	if v, ok := fields["derogated"].(bool); ok {
		r.Derogated = v
	}
	if v, ok := fields["confidence"].(float64); ok {
		r.Confidence = v
	}
	return r
}

// Close releases the index.
func (a *Adapter) Close() error {
	return a.index.Close()
}
