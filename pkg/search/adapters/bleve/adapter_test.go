package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-legal/acervo/pkg/search"
)

func testRecords() []search.ArticleRecord {
	return []search.ArticleRecord{
		{
			ObjectID:    "ley-minera/1",
			Slug:        "ley-minera",
			ArticleID:   "1",
			Type:        "article",
			Breadcrumbs: "Capítulo I",
			Text:        "La exploración y explotación de minerales corresponde a la Nación.",
			Confidence:  1.0,
		},
		{
			ObjectID:    "ley-minera/2",
			Slug:        "ley-minera",
			ArticleID:   "2",
			Type:        "article",
			Breadcrumbs: "Capítulo I",
			Text:        "El beneficio de los minerales se sujeta a las disposiciones de esta ley.",
			Confidence:  0.9,
		},
		{
			ObjectID:   "ley-minera/Primero",
			Slug:       "ley-minera",
			ArticleID:  "Primero",
			Type:       "transitory",
			Text:       "El presente Decreto entrará en vigor al día siguiente de su publicación.",
			Confidence: 0.95,
		},
	}
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(&Config{IndexPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAdapter_IndexAndSearch(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Index(ctx, testRecords()))

	hits, err := a.Search(ctx, "exploración", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ley-minera/1", hits[0].ObjectID)
	assert.Equal(t, "1", hits[0].ArticleID)
	assert.Equal(t, "article", hits[0].Type)
	assert.Contains(t, hits[0].Text, "exploración")
}

func TestAdapter_SearchLimit(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Index(ctx, testRecords()))

	hits, err := a.Search(ctx, "minerales", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestAdapter_SearchNoResults(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Index(ctx, testRecords()))

	hits, err := a.Search(ctx, "ferrocarriles", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAdapter_ReopenExistingIndex(t *testing.T) {
	dir := t.TempDir()

	a, err := NewAdapter(&Config{IndexPath: dir})
	require.NoError(t, err)
	require.NoError(t, a.Index(context.Background(), testRecords()))
	require.NoError(t, a.Close())

	b, err := NewAdapter(&Config{IndexPath: dir})
	require.NoError(t, err)
	defer b.Close()

	hits, err := b.Search(context.Background(), "exploración", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestAdapter_RequiresPath(t *testing.T) {
	_, err := NewAdapter(&Config{})
	assert.Error(t, err)
}
