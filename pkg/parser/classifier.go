package parser

import (
	"regexp"
	"strings"

	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// Match is the result of classifying one line against the structural
// pattern tables.
type Match struct {
	Type legaldoc.ElementType

	// Token is the numeral token as it appears in the line
	// ("III", "Décimo Primero").
	Token string

	// Number is the resolved numeric value of Token. Zero when the
	// numeral is unresolved; callers treat zero as non-sortable, not
	// as an error.
	Number int

	// Heading is the text following the numeral, if any.
	Heading string

	// Start and End delimit the matched span within the line.
	Start, End int
}

// categoryTable is the ordered pattern list for one structural category.
// Patterns are tried in order; the first lexical match wins unless its
// numeral is unresolvable and a later pattern resolves one.
type categoryTable struct {
	elemType legaldoc.ElementType
	patterns []*regexp.Regexp
}

// Classifier matches trimmed lines against per-category pattern tables.
// Categories are tried in fixed priority order: book, title, part,
// chapter, section. Articles and the transitory-section header are
// handled by dedicated passes in the segmenter and sub-parser.
//
// The tables are per-instance state so parses stay independent and
// thread-safe; a Classifier is read-only after construction.
type Classifier struct {
	tables []categoryTable
}

// headingSep separates the numeral token from an optional trailing
// heading: punctuation run or whitespace.
const headingSep = `(?:(?:\s*[.:\-–—]+\s*|\s+)(.*))?`

// buildTable compiles the ordered patterns for one category keyword.
// Order: Roman-numeral form, compound ordinal words, single ordinal
// word. Keyword alternations cover accented and unaccented spellings;
// (?i) covers upper, lower, and mixed case.
func buildTable(elemType legaldoc.ElementType, keyword string) categoryTable {
	word := `[a-záéíóúüñ]+`
	return categoryTable{
		elemType: elemType,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^` + keyword + `\s+([ivxlcdm]+)` + headingSep + `$`),
			regexp.MustCompile(`(?i)^` + keyword + `\s+(` + word + `\s+` + word + `)` + headingSep + `$`),
			regexp.MustCompile(`(?i)^` + keyword + `\s+(` + word + `)` + headingSep + `$`),
		},
	}
}

// NewClassifier builds a classifier with the default pattern tables.
func NewClassifier() *Classifier {
	return &Classifier{
		tables: []categoryTable{
			buildTable(legaldoc.ElementBook, `libro`),
			buildTable(legaldoc.ElementTitle, `t[ií]tulo`),
			buildTable(legaldoc.ElementPart, `parte`),
			buildTable(legaldoc.ElementChapter, `cap[ií]tulo`),
			buildTable(legaldoc.ElementSection, `secci[oó]n`),
		},
	}
}

// Classify matches a trimmed line against the pattern tables. The first
// category with a matching pattern wins. Within a category, the first
// pattern whose numeral resolves wins; when every lexical match leaves
// the numeral unresolved, the first match is returned with Number 0.
func (c *Classifier) Classify(line string) (Match, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Match{}, false
	}

	for _, table := range c.tables {
		var fallback *Match
		for _, re := range table.patterns {
			loc := re.FindStringSubmatchIndex(line)
			if loc == nil {
				continue
			}
			m := buildMatch(table.elemType, line, loc)
			if m.Number != 0 {
				return m, true
			}
			if fallback == nil {
				fallback = &m
			}
		}
		if fallback != nil {
			return *fallback, true
		}
	}
	return Match{}, false
}

// buildMatch assembles a Match from submatch indexes, resolving the
// numeral token as a Roman numeral or Spanish ordinal.
func buildMatch(elemType legaldoc.ElementType, line string, loc []int) Match {
	m := Match{
		Type:  elemType,
		Start: loc[0],
		End:   loc[1],
	}
	if loc[2] >= 0 {
		m.Token = line[loc[2]:loc[3]]
	}
	if len(loc) > 5 && loc[4] >= 0 {
		m.Heading = strings.TrimSpace(line[loc[4]:loc[5]])
	}
	m.Number = resolveNumeral(m.Token)
	return m
}

// resolveNumeral resolves a numeral token: Roman numerals take the
// subtractive algorithm, everything else the Spanish ordinal table.
func resolveNumeral(token string) int {
	if isRoman(token) {
		return parseRoman(token)
	}
	return resolveOrdinal(token)
}
