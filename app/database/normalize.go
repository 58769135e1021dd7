package database

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips combining marks so that matching tolerates
// diacritics in podcast names ("Memória" matches "memoria").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

func foldContains(value, pattern string) bool {
	if pattern == "" {
		return false
	}
	return strings.Contains(fold(value), fold(pattern))
}
