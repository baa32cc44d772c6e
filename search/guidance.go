package search

import "fmt"

// Advisory strings attached to guided search results.
const (
	guidanceNoMatches = "No matches found. Try different or fewer search terms."
	guidanceNarrow    = "Results are limited. Consider broader or fewer terms."
)

// adviseOnHits returns advisory text for a plain search outcome, or an
// empty string when no advice applies.
func adviseOnHits(hitCount, tokenCount int) string {
	switch {
	case hitCount == 0:
		return guidanceNoMatches
	case hitCount < 3 && tokenCount > 3:
		return guidanceNarrow
	default:
		return ""
	}
}

// fullSystemGuidance explains a full-system listing to the decision maker.
func fullSystemGuidance(system string, total int) string {
	return fmt.Sprintf(
		"No text matches. Listing all %d concepts of the small vocabulary %s, ranked by similarity to the query.",
		total, system)
}
