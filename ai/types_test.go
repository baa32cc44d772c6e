package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionValidate(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		valid    bool
	}{
		{
			name:     "valid pick",
			decision: Decision{Action: ActionPick, System: "http://loinc.org", Code: "2345-7"},
			valid:    true,
		},
		{
			name:     "pick missing code",
			decision: Decision{Action: ActionPick, System: "http://loinc.org"},
			valid:    false,
		},
		{
			name:     "pick missing system",
			decision: Decision{Action: ActionPick, Code: "2345-7"},
			valid:    false,
		},
		{
			name:     "valid search",
			decision: Decision{Action: ActionSearch, Terms: []string{"glucose", "serum"}},
			valid:    true,
		},
		{
			name:     "search without terms",
			decision: Decision{Action: ActionSearch},
			valid:    false,
		},
		{
			name:     "valid unresolved",
			decision: Decision{Action: ActionUnresolved, Reason: "no plausible candidate"},
			valid:    true,
		},
		{
			name:     "unresolved without reason",
			decision: Decision{Action: ActionUnresolved},
			valid:    false,
		},
		{
			name:     "unknown action",
			decision: Decision{Action: "shrug"},
			valid:    false,
		},
		{
			name:     "empty action",
			decision: Decision{},
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDecision)
			}
		})
	}
}
