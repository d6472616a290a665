package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityExactMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"identical strings", "project sync", "project sync"},
		{"case differs", "Project Sync", "project sync"},
		{"whitespace differs", "hello world", "helloworld"},
		{"single char identical", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1.0, Similarity(tt.a, tt.b))
		})
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"budget review", "budget planning"},
		{"night", "nacht"},
		{"marketing strategy", "market strategy session"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}

func TestSimilarityKnownValue(t *testing.T) {
	// "night" and "nacht" share a single bigram ("ht") out of 4 + 4.
	assert.InDelta(t, 0.25, Similarity("night", "nacht"), 1e-9)
}

func TestSimilarityShortStrings(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"single chars", "a", "b"},
		{"one short one long", "a", "abcdef"},
		{"punctuation only", "!!", "??"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Similarity(tt.a, tt.b))
		})
	}
}

func TestSimilarityEmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "something"))
	assert.Equal(t, 0.0, Similarity("something", ""))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarityRepeatedBigrams(t *testing.T) {
	// Multiset semantics: "aaaa" has three "aa" bigrams, "aa" has one.
	// Common count is 1, not 3.
	assert.InDelta(t, 2.0/4.0, Similarity("aaaa", "aa"), 1e-9)
}

func TestNgrams(t *testing.T) {
	assert.Equal(t, []string{"ab", "bc", "cd"}, ngrams("abcd", 2))
	assert.Nil(t, ngrams("a", 2))
	// Non-alphanumeric characters are stripped before windowing.
	assert.Equal(t, []string{"ab", "bc"}, ngrams("a-b c!", 2))
}
