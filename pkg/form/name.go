package form

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// CleanName normalizes a form name for use in file paths: accents are
// stripped, characters other than letters, digits, '_', '-' and spaces
// are removed, spaces become '_' and letters are lower-cased.
func CleanName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		res = s
	}
	res = nonWord.ReplaceAllString(res, "")
	res = strings.TrimSpace(res)
	res = strings.ReplaceAll(res, " ", "_")
	return strings.ToLower(res)
}
