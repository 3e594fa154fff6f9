// Package normalizer maps noisy survey fields to canonical codes and cleans survey waves.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s, strips accents and punctuation and collapses whitespace.
// "  Córdoba. " and "CORDOBA" fold to the same key.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	folded = strings.ReplaceAll(folded, ".", "")
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return ' '
	}, folded)

	return strings.Join(strings.Fields(folded), " ")
}
