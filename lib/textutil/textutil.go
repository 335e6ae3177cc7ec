package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// RemoveAccents drops combining marks, so "água" becomes "agua".
func RemoveAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizePhrase lowercases, strips accents and collapses every
// non-alphanumeric run to a single space. Used to match link text and
// filenames against keyword tables.
func NormalizePhrase(s string) string {
	s = RemoveAccents(strings.ToLower(strings.TrimSpace(s)))
	return strings.TrimSpace(nonAlnum.ReplaceAllString(s, " "))
}

// NormalizeKey is NormalizePhrase with underscores instead of spaces,
// the convention for column names and indicator name segments.
func NormalizeKey(s string) string {
	s = RemoveAccents(strings.ToLower(strings.TrimSpace(s)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
}

// MatchAny reports whether the normalized haystack contains any of the
// given patterns. Patterns must already be in normalized (phrase) form.
func MatchAny(haystack string, patterns []string) bool {
	haystack = NormalizePhrase(haystack)
	for _, p := range patterns {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}
