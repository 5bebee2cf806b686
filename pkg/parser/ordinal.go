package parser

import "strings"

// ordinalLast is the resolved value used for "último", which sorts after
// any explicitly numbered transitory article.
const ordinalLast = 999

// ordinalUnits maps accent-stripped lowercase Spanish ordinal words to
// their values. Both genders and apocopated forms (primer, tercer) are
// included. Lookup misses resolve to 0 ("unknown"), which callers treat
// as a non-match for sorting purposes rather than an error.
var ordinalUnits = map[string]int{
	"primero": 1, "primera": 1, "primer": 1,
	"segundo": 2, "segunda": 2,
	"tercero": 3, "tercera": 3, "tercer": 3,
	"cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5,
	"sexto": 6, "sexta": 6,
	"septimo": 7, "septima": 7,
	"octavo": 8, "octava": 8,
	"noveno": 9, "novena": 9,
	"decimo": 10, "decima": 10,
	"undecimo": 11, "undecima": 11,
	"duodecimo": 12, "duodecima": 12,
	"vigesimo": 20, "vigesima": 20,
	"trigesimo": 30, "trigesima": 30,
	"cuadragesimo": 40, "cuadragesima": 40,
	"quincuagesimo": 50, "quincuagesima": 50,
	"ultimo": ordinalLast, "ultima": ordinalLast,
}

// ordinalBases are the tens words that admit a trailing unit word
// ("decimo primero" = 11, "vigesimo segundo" = 22).
var ordinalBases = map[string]int{
	"decimo": 10, "decima": 10,
	"vigesimo": 20, "vigesima": 20,
	"trigesimo": 30, "trigesima": 30,
	"cuadragesimo": 40, "cuadragesima": 40,
	"quincuagesimo": 50, "quincuagesima": 50,
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// normalizeOrdinalWord lowercases a word and strips Spanish accents so
// that accented, unaccented, and mixed-case scans all resolve.
func normalizeOrdinalWord(w string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(w)))
}

// resolveOrdinal resolves one or two Spanish ordinal words to their
// numeric value. Compound forms add a base and a unit ("decimo tercero"
// = 13). Unresolved ordinals yield 0, never an error.
func resolveOrdinal(s string) int {
	fields := strings.Fields(normalizeOrdinalWord(s))
	switch len(fields) {
	case 1:
		return ordinalUnits[fields[0]]
	case 2:
		base, ok := ordinalBases[fields[0]]
		if !ok {
			return 0
		}
		unit := ordinalUnits[fields[1]]
		if unit == 0 || unit >= 10 {
			return 0
		}
		return base + unit
	}
	return 0
}
