package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ligatures covers letters that do not decompose into an ASCII base letter.
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O", "đ", "d", "Đ", "D", "ł", "l", "Ł", "L", "ı", "i",
)

// NormalizeCountryName reduces a country name to its lookup key: accents
// removed, lowercased, every character outside a-z dropped.
// "Côte d'Ivoire" becomes "cotedivoire". The result is a fixed point.
func NormalizeCountryName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, ligatures.Replace(name))
	if err != nil {
		ascii = name
	}
	ascii = strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
