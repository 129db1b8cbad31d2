package recipelist

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Normalize lowercases s, strips diacritics, trims it and collapses inner
// whitespace to single spaces. "  Crème  Brûlée " becomes "creme brulee".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(lower.String(stripped)), " ")
}

// Terms splits a normalized query into its search terms.
func Terms(query string) []string {
	return strings.Fields(Normalize(query))
}
