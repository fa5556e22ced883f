// Package textnorm prepares free text for the search index.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips combining diacritical marks and collapses
// whitespace runs, so two strings differing only in case, accents or
// spacing produce the same index tokens.
func Normalize(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// A badly encoded rune should not keep the text out of the
		// index; index the raw form instead.
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
