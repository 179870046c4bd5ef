// Package textsim compares person names the way registration desks type them:
// case, accents and punctuation are ignored and the remaining text is scored
// by edit distance.
package textsim

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum similarity for two names to be considered
// the same person.
const DefaultThreshold = 0.8

// Normalize lowercases s, strips diacritics and drops every character outside
// [a-z0-9 ]. The result is trimmed. Normalize is idempotent.
func Normalize(s string) string {
	// transform.Chain keeps internal state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		decomposed = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Distance returns the Levenshtein distance between the normalized forms of
// a and b.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(Normalize(a), Normalize(b))
}

// Similarity returns a score in [0,1]: (maxLen - distance) / maxLen over the
// normalized strings. Two strings that are both empty after normalization are
// fully similar.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	return similarity(na, nb)
}

func similarity(na, nb string) float64 {
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(na, nb)
	return float64(maxLen-distance) / float64(maxLen)
}

// IsSimilar reports whether a and b match at DefaultThreshold.
func IsSimilar(a, b string) bool {
	return IsSimilarWithThreshold(a, b, DefaultThreshold)
}

// IsSimilarWithThreshold reports whether Similarity(a, b) >= threshold or one
// normalized string contains the other ("joao" vs "joao silva"). A string that
// normalizes to empty only matches another empty string.
func IsSimilarWithThreshold(a, b string, threshold float64) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return na == nb
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return similarity(na, nb) >= threshold
}
