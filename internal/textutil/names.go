package textutil

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Normalize lowercases a person or work name, strips punctuation, and
// collapses runs of whitespace so variants like "Jane  Doe" and "jane doe."
// compare equal.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// EqualNames reports whether two names are the same after normalization.
func EqualNames(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// ContainsName reports whether needle appears inside haystack after
// normalization. Used for self-written detection, where the performer name
// "Jane" is expected inside the songwriter credit "Jane Doe".
func ContainsName(haystack, needle string) bool {
	h, n := Normalize(haystack), Normalize(needle)
	if h == "" || n == "" {
		return false
	}
	return strings.Contains(h, n)
}

// Similarity scores two names in [0,1] using normalized Levenshtein distance.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return strutil.Similarity(na, nb, metrics.NewLevenshtein())
}
