// Package slug turns free-form titles into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pattern is the shape every stored slug has.
var Pattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	invalidRune = regexp.MustCompile(`[^a-z0-9-]`)
)

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Make lowercases s, folds accents, replaces each run of characters outside
// [a-z0-9] with a single dash and trims dashes from both ends.
// Make(Make(s)) == Make(s) for every s.
func Make(s string) string {
	s = strings.ToLower(fold(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Sanitize keeps only [a-z0-9-] without collapsing separators, the way the slug
// input behaves while the user is still typing.
func Sanitize(s string) string {
	return invalidRune.ReplaceAllString(strings.ToLower(s), "")
}

func Valid(s string) bool {
	return Pattern.MatchString(s)
}
