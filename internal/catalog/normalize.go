// Package catalog provides name normalization for crop and market reference
// data, so lookups and seed-time deduplication tolerate case, spacing, and
// diacritic differences.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceFold = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// NormalizeName returns a canonical form of a crop or market name: trimmed,
// lowercased, whitespace collapsed, Latin diacritics stripped. Devanagari
// names pass through NFC-normalized so localized crop names compare stably.
func NormalizeName(s string) string {
	s = whitespaceFold.Replace(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)

	// NFD + strip combining marks on Latin text only; Devanagari vowel signs
	// are combining marks too and must survive.
	t := transform.Chain(norm.NFD, runes.Remove(latinMarks{}), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// latinMarks matches combining marks that follow Latin letters. Implemented
// as a runes.Set over unicode.Mn restricted to the Latin combining block.
type latinMarks struct{}

func (latinMarks) Contains(r rune) bool {
	return unicode.In(r, unicode.Mn) && r >= 0x0300 && r <= 0x036F
}
