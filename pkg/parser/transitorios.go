package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// transitoryConfidence is the fixed confidence assigned to every
// transitory article. Ordinal-marker segmentation is reliable but the
// closing provisions of scanned documents carry more OCR noise than the
// main body, so they never score a full 1.0.
const transitoryConfidence = 0.95

// transitoryOrdinalWords are the ordinal prefixes recognized at the
// start of a transitory article, first through twelfth plus "último".
// Accented and unaccented spellings are listed; case is folded by the
// patterns.
var transitoryOrdinalWords = []string{
	"primero", "primera",
	"segundo", "segunda",
	"tercero", "tercera",
	"cuarto", "cuarta",
	"quinto", "quinta",
	"sexto", "sexta",
	"séptimo", "septimo", "séptima", "septima",
	"octavo", "octava",
	"noveno", "novena",
	"décimo", "decimo", "décima", "decima",
	"undécimo", "undecimo", "undécima", "undecima",
	"duodécimo", "duodecimo", "duodécima", "duodecima",
	"último", "ultimo", "última", "ultima",
}

// TransitoriosParser isolates the transitory-articles section of a
// statute and segments it by ordinal markers. Read-only after
// construction.
type TransitoriosParser struct {
	header *regexp.Regexp
	marker *regexp.Regexp
}

// NewTransitoriosParser builds the sub-parser with its default header
// and marker patterns.
func NewTransitoriosParser() *TransitoriosParser {
	return &TransitoriosParser{
		// Section header variants: "ARTÍCULOS TRANSITORIOS",
		// "TRANSITORIOS", "TRANSITORIO", "DISPOSICIONES TRANSITORIAS".
		header: regexp.MustCompile(
			`(?i)^\s*(?:art[ií]culos?\s+transitorios?|transitorios?|disposiciones\s+transitorias)\s*$`),

		// "<Ordinal>.- " at the start of a line, dot and dash
		// tolerating interleaved whitespace.
		marker: regexp.MustCompile(
			`(?im)^\s*(` + strings.Join(transitoryOrdinalWords, "|") + `)\s*\.\s*-\s*`),
	}
}

// HeaderIndex returns the index of the first line matching a
// transitory-section header variant, or -1 when the document has no
// transitory section. Absence is not an error.
func (p *TransitoriosParser) HeaderIndex(lines []string) int {
	for i, line := range lines {
		if p.header.MatchString(line) {
			return i
		}
	}
	return -1
}

// Parse segments the text following the section header by ordinal
// markers. Content runs from each marker to the next marker or end of
// text. Results are sorted by resolved ordinal value because source
// scans sometimes publish transitory articles out of order.
func (p *TransitoriosParser) Parse(text string) []legaldoc.ParsedElement {
	locs := p.marker.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return nil
	}

	elements := make([]legaldoc.ParsedElement, 0, len(locs))
	for i, loc := range locs {
		token := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		id := titleCase(token)

		elements = append(elements, legaldoc.ParsedElement{
			Type:   legaldoc.ElementTransitory,
			ID:     id,
			Number: resolveOrdinal(token),
			Raw:    strings.TrimSpace(text[loc[0]:loc[1]]),
			Article: &legaldoc.Article{
				ID:         id,
				Body:       body,
				Confidence: transitoryConfidence,
			},
		})
	}

	// Unresolved ordinals (Number 0) sort first but are kept; they are
	// non-sortable, not invalid.
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Number < elements[j].Number
	})

	return elements
}

// titleCase uppercases the first rune of an ordinal token and
// lowercases the rest ("PRIMERO" becomes "Primero").
func titleCase(s string) string {
	s = strings.ToLower(s)
	for i, r := range s {
		return strings.ToUpper(string(r)) + s[i+len(string(r)):]
	}
	return s
}
