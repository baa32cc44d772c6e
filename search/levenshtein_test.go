package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"same", "same", 0},
		{"kitten", "sitting", 3},
		{"loinc", "lonic", 2},
		{"sct", "cpt", 2},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, levenshteinDistance(tc.a, tc.b),
			"distance(%q, %q)", tc.a, tc.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Married", "married"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 2.0/3.0, Similarity("abc", "abd"), 1e-9)

	// Closer strings score higher
	assert.Greater(t,
		Similarity("Married", "Marred"),
		Similarity("Married", "Never Married"))
}
