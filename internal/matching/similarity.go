// Package matching resolves natural-language references to calendar events
// using n-gram similarity and keyword scoring.
package matching

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9]`)
)

// ngrams generates overlapping n-grams from a string. Only alphanumeric
// characters participate; everything else is stripped first.
func ngrams(s string, n int) []string {
	cleaned := nonAlnumRegex.ReplaceAllString(strings.ToLower(s), "")
	if len(cleaned) < n {
		return nil
	}
	grams := make([]string, 0, len(cleaned)-n+1)
	for i := 0; i+n <= len(cleaned); i++ {
		grams = append(grams, cleaned[i:i+n])
	}
	return grams
}

// Similarity calculates bigram similarity between two strings using the
// Sørensen–Dice coefficient over n-gram multisets. Returns a score in [0, 1].
// Strings that are identical after lowercasing and whitespace removal score
// exactly 1.0 without touching the n-gram path.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	s1 := whitespaceRegex.ReplaceAllString(strings.ToLower(a), "")
	s2 := whitespaceRegex.ReplaceAllString(strings.ToLower(b), "")
	if s1 == s2 {
		return 1.0
	}

	grams1 := ngrams(s1, 2)
	grams2 := ngrams(s2, 2)
	if len(grams1) == 0 || len(grams2) == 0 {
		return 0
	}

	// Multiset intersection: each occurrence in grams2 can satisfy at most
	// one occurrence from grams1, so repeated bigrams are counted correctly.
	remaining := make(map[string]int, len(grams2))
	for _, g := range grams2 {
		remaining[g]++
	}

	common := 0
	for _, g := range grams1 {
		if remaining[g] > 0 {
			remaining[g]--
			common++
		}
	}

	return 2 * float64(common) / float64(len(grams1)+len(grams2))
}
