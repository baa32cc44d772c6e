package search

import (
	"strings"
	"unicode"
)

// minTokenLength drops stray punctuation fragments and single-letter noise.
const minTokenLength = 2

// Tokenize splits text into lowercase alphanumeric runs of at least two
// characters.
func Tokenize(text string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) >= minTokenLength {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// buildMatch assembles an FTS5 match expression from tokens. Each token is
// double-quoted so the query parser treats it as a literal term, and the
// space join gives AND semantics.
func buildMatch(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " ")
}
