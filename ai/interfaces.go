package ai

import "context"

// Decider is the external decision oracle consulted for each unresolved
// placeholder. Given the current candidate hits and the search context, it
// returns the next move: pick a candidate, search again with new terms, or
// give up. Implementations must be thread-safe for concurrent use.
type Decider interface {
	// Decide examines one placeholder's decision request and returns the
	// oracle's next move. The returned decision has been validated against
	// its action's required fields.
	// Returns an error if the oracle is unreachable or keeps producing
	// responses that cannot be interpreted.
	Decide(ctx context.Context, request *DecisionRequest) (*Decision, error)
}
