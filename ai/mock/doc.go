// Package mock provides a test double for the decision oracle.
//
// MockDecider implements ai.Decider for use in unit tests, allowing
// resolution runs without an external language model and enabling
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Default behavior: pick the first candidate hit
//	decider := mock.NewMockDecider()
//
//	// Custom behavior injection
//	decider.DecideFunc = func(ctx context.Context, req *ai.DecisionRequest) (*ai.Decision, error) {
//	    return &ai.Decision{Action: ai.ActionSearch, Terms: []string{"glucose"}}, nil
//	}
//
//	// Check call counts
//	count := decider.CallCount()
package mock
