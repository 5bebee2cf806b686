package archive

import (
	"encoding/json"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
	"github.com/acervo-legal/acervo/pkg/parser"
)

// Document is the canonical archival representation: identification
// metadata plus the nested structural body.
type Document struct {
	Identification Identification `json:"identification"`
	Body           Body           `json:"body"`
}

// Identification is the archival identity block.
type Identification struct {
	Identity Identity `json:"identity"`

	DocumentType    string   `json:"document_type"`
	Jurisdiction    []string `json:"jurisdiction"`
	PublicationDate string   `json:"publication_date"`
	Slug            string   `json:"slug"`
	Language        string   `json:"language"`
	Format          string   `json:"format"`
}

// Body holds the nested document structure.
type Body struct {
	Elements []BodyNode `json:"elements"`
}

// BodyNode is one node of the archival body. Container nodes carry
// children; article and transitory nodes carry text, flags, and
// trailing reform notes.
type BodyNode struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Number  int    `json:"number,omitempty"`
	Heading string `json:"heading,omitempty"`

	Text       string  `json:"text,omitempty"`
	Derogated  bool    `json:"derogated,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	Notes []ReformNote `json:"notes,omitempty"`

	Children []BodyNode `json:"children,omitempty"`
}

// ReformNote is a reform annotation attached as a trailing note on its
// owning article.
type ReformNote struct {
	Element string `json:"element"`
	Action  string `json:"action"`
	Date    string `json:"date"`
	Text    string `json:"text"`
}

// Serialize projects the canonical hierarchy tree into the archival
// document for the given metadata. The projection is deterministic:
// output order follows document order and struct field order only, so
// re-serializing an unchanged parse yields byte-identical output.
func Serialize(tree *parser.Tree, meta Metadata) *Document {
	doc := &Document{
		Identification: Identification{
			Identity:        BuildIdentity(meta),
			DocumentType:    meta.DocumentType,
			Jurisdiction:    meta.Jurisdiction,
			PublicationDate: meta.PublicationDate.Format(identityDate),
			Slug:            meta.ResolvedSlug(),
			Language:        meta.ResolvedLanguage(),
			Format:          meta.ResolvedFormat(),
		},
	}

	doc.Body.Elements = make([]BodyNode, 0, len(tree.Roots))
	for _, root := range tree.Roots {
		doc.Body.Elements = append(doc.Body.Elements, projectNode(root))
	}
	return doc
}

// projectNode converts one tree node and its children.
func projectNode(n *parser.Node) BodyNode {
	el := n.Element
	node := BodyNode{
		Type:    string(el.Type),
		ID:      el.ID,
		Number:  el.Number,
		Heading: el.Heading,
	}

	if a := el.Article; a != nil {
		node.Text = a.Body
		node.Derogated = a.Derogated
		node.Confidence = a.Confidence
		for _, r := range a.Reforms {
			node.Notes = append(node.Notes, ReformNote{
				Element: r.Element,
				Action:  r.Action,
				Date:    r.Date.Format(identityDate),
				Text:    r.Raw,
			})
		}
	}

	for _, c := range n.Children {
		node.Children = append(node.Children, projectNode(c))
	}
	return node
}

// Marshal renders the document as indented JSON. Output is
// deterministic for an unchanged document.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Counts walks the body and totals elements by type, so the quality
// scorer can consume a serialized document instead of the in-memory
// parse result.
func (d *Document) Counts() legaldoc.Counts {
	var c legaldoc.Counts
	var rec func(nodes []BodyNode)
	rec = func(nodes []BodyNode) {
		for i := range nodes {
			switch legaldoc.ElementType(nodes[i].Type) {
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
			c.Annotations += len(nodes[i].Notes)
			rec(nodes[i].Children)
		}
	}
	rec(d.Body.Elements)
	return c
}
