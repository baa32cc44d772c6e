package search

import "strings"

// levenshteinDistance calculates the edit distance between two strings.
// Uses two rows instead of a full matrix for memory efficiency.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Similarity returns a normalized similarity between two strings in [0, 1],
// where 1 means equal. Comparison is case-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}

	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}

	return 1 - float64(levenshteinDistance(a, b))/float64(maxLen)
}
