package parser

import (
	"fmt"
	"strings"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// Node is one node of the canonical document tree. Children are owned
// by their parent; there are no parent back-pointers, so the tree is
// acyclic by construction and every node has a single owner.
type Node struct {
	Element  legaldoc.ParsedElement
	Children []*Node
}

// Tree is the assembled hierarchy of a parsed document. It is the one
// canonical structure; the navigation and archival representations are
// projections over it and cannot diverge.
type Tree struct {
	Roots []*Node
}

// Assemble folds the flat, document-ordered element stream into a
// nested tree.
//
// Attachment rules: a book opens a new root and clears the title and
// chapter context; a title attaches under the current book (else root)
// and clears the chapter context; a chapter attaches under the current
// title, else the current book, else root. Articles, transitories,
// sections, and parts attach under the deepest non-nil of chapter,
// title, and book, falling back to root when all three are nil.
// Sections and parts do not open a context of their own, so documents
// that skip levels (an article directly under a book) are accepted.
func Assemble(elements []legaldoc.ParsedElement) *Tree {
	tree := &Tree{}

	var book, title, chapter *Node

	attach := func(n *Node, parent *Node) {
		if parent == nil {
			tree.Roots = append(tree.Roots, n)
			return
		}
		parent.Children = append(parent.Children, n)
	}

	deepest := func() *Node {
		switch {
		case chapter != nil:
			return chapter
		case title != nil:
			return title
		case book != nil:
			return book
		}
		return nil
	}

	for _, el := range elements {
		n := &Node{Element: el}
		switch el.Type {
		case legaldoc.ElementBook:
			tree.Roots = append(tree.Roots, n)
			book, title, chapter = n, nil, nil
		case legaldoc.ElementTitle:
			attach(n, book)
			title, chapter = n, nil
		case legaldoc.ElementChapter:
			switch {
			case title != nil:
				attach(n, title)
			case book != nil:
				attach(n, book)
			default:
				attach(n, nil)
			}
			chapter = n
		default:
			attach(n, deepest())
		}
	}

	return tree
}

// Walk visits every node depth-first in document order.
func (t *Tree) Walk(visit func(n *Node, depth int)) {
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		visit(n, depth)
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	for _, r := range t.Roots {
		rec(r, 0)
	}
}

// NavNode is one node of the generic labelled navigation projection.
type NavNode struct {
	Label    string     `json:"label"`
	Type     string     `json:"type"`
	Children []*NavNode `json:"children,omitempty"`
}

// Navigation projects the canonical tree into a labelled navigation
// tree suitable for tables of contents.
func (t *Tree) Navigation() []*NavNode {
	var rec func(n *Node) *NavNode
	rec = func(n *Node) *NavNode {
		nav := &NavNode{
			Label: navLabel(n.Element),
			Type:  string(n.Element.Type),
		}
		for _, c := range n.Children {
			nav.Children = append(nav.Children, rec(c))
		}
		return nav
	}

	out := make([]*NavNode, 0, len(t.Roots))
	for _, r := range t.Roots {
		out = append(out, rec(r))
	}
	return out
}

// navLabel builds the display label for one element.
func navLabel(el legaldoc.ParsedElement) string {
	var prefix string
	switch el.Type {
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
	case legaldoc.ElementArticle:
		return fmt.Sprintf("Artículo %s", el.ID)
	case legaldoc.ElementTransitory:
		return fmt.Sprintf("%s Transitorio", el.ID)
	}

	label := strings.TrimSpace(fmt.Sprintf("%s %s", prefix, el.ID))
	if el.Heading != "" {
		label = fmt.Sprintf("%s — %s", label, el.Heading)
	}
	return label
}
