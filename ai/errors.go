package ai

import "errors"

var (
	// ErrInvalidDecision is returned when an oracle response fails
	// validation against its action's required fields.
	ErrInvalidDecision = errors.New("invalid decision")
)
