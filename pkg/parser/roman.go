package parser

import "strings"

// romanValues maps Roman numeral characters to their values. Characters
// outside the table contribute zero rather than producing an error, so
// OCR noise degrades the resolved number instead of aborting the parse.
var romanValues = map[rune]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// parseRoman resolves a Roman numeral using the standard subtractive
// rule: a smaller numeral before a larger one subtracts. Unrecognized
// characters yield 0.
func parseRoman(s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	total := 0
	for i, r := range s {
		v := romanValues[r]
		if v == 0 {
			continue
		}
		next := 0
		for _, nr := range s[i+len(string(r)):] {
			next = romanValues[nr]
			break
		}
		if v < next {
			total -= v
		} else {
			total += v
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// isRoman reports whether every character of s is a Roman numeral
// character. Empty strings are not Roman numerals.
func isRoman(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	for _, r := range s {
		if _, ok := romanValues[r]; !ok {
			return false
		}
	}
	return true
}
