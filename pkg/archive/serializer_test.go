package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	legalparser "github.com/acervo-legal/acervo/pkg/parser"
)

const serializerStatute = `TÍTULO PRIMERO
CAPÍTULO I.- Disposiciones Generales
Artículo 1.- Las disposiciones de esta ley son de orden público e interés social.
Artículo reformado DOF 07-06-2024
Artículo 2.- La aplicación de esta ley corresponde al Ejecutivo Federal por conducto de la Secretaría.
TRANSITORIOS
Primero.- El presente Decreto entrará en vigor al día siguiente de su publicación.`

func testMetadata() Metadata {
	return Metadata{
		DocumentType:    "ley",
		Jurisdiction:    []string{"mx"},
		PublicationDate: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		Name:            "Ley de Prueba",
	}
}

func parseTree(t *testing.T, text string) *legalparser.Tree {
	t.Helper()
	p := legalparser.New(legalparser.DefaultConfig())
	return p.Assemble(p.Parse(text))
}

func TestSerialize(t *testing.T) {
	doc := Serialize(parseTree(t, serializerStatute), testMetadata())

	ident := doc.Identification
	assert.Equal(t, "/akn/mx/ley/2024-06-07/ley-de-prueba", ident.Identity.Work)
	assert.Equal(t, "ley-de-prueba", ident.Slug)
	assert.Equal(t, "2024-06-07", ident.PublicationDate)
	assert.Equal(t, "spa", ident.Language)
	assert.Equal(t, "json", ident.Format)

	require.Len(t, doc.Body.Elements, 1)
	title := doc.Body.Elements[0]
	assert.Equal(t, "title", title.Type)
	require.Len(t, title.Children, 1)
	chapter := title.Children[0]
	assert.Equal(t, "chapter", chapter.Type)
	assert.Equal(t, "Disposiciones Generales", chapter.Heading)

	require.Len(t, chapter.Children, 3)
	art1 := chapter.Children[0]
	assert.Equal(t, "article", art1.Type)
	assert.Equal(t, "1", art1.ID)
	assert.NotContains(t, art1.Text, "DOF")
	require.Len(t, art1.Notes, 1)
	assert.Equal(t, "articulo", art1.Notes[0].Element)
	assert.Equal(t, "reformado", art1.Notes[0].Action)
	assert.Equal(t, "2024-06-07", art1.Notes[0].Date)

	trans := chapter.Children[2]
	assert.Equal(t, "transitory", trans.Type)
	assert.Equal(t, "Primero", trans.ID)
	assert.InDelta(t, 0.95, trans.Confidence, 1e-9)
}

func TestSerialize_DeterministicOutput(t *testing.T) {
	tree := parseTree(t, serializerStatute)
	meta := testMetadata()

	a, err := Serialize(tree, meta).Marshal()
	require.NoError(t, err)
	b, err := Serialize(tree, meta).Marshal()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDocument_Counts(t *testing.T) {
	doc := Serialize(parseTree(t, serializerStatute), testMetadata())

	counts := doc.Counts()
	assert.Equal(t, 1, counts.Titles)
	assert.Equal(t, 1, counts.Chapters)
	assert.Equal(t, 2, counts.Articles)
	assert.Equal(t, 1, counts.Transitories)
	assert.Equal(t, 1, counts.Annotations)
}

func TestSerialize_DerogatedArticle(t *testing.T) {
	text := "Artículo 3.- (DEROGADO)\nTRANSITORIOS\nPrimero.- Entrará en vigor de inmediato."

	doc := Serialize(parseTree(t, text), testMetadata())
	require.Len(t, doc.Body.Elements, 2)
	art := doc.Body.Elements[0]
	assert.True(t, art.Derogated)
	assert.InDelta(t, 0.9, art.Confidence, 1e-9)
}
