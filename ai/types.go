package ai

import (
	"fmt"

	"github.com/poiesic/resolvit/core"
)

// Decision actions. Every oracle response names exactly one.
const (
	// ActionPick selects one candidate hit by system and code.
	ActionPick = "pick"

	// ActionSearch proposes new search terms for the next iteration.
	ActionSearch = "search"

	// ActionUnresolved declares the placeholder unresolvable with a reason.
	ActionUnresolved = "unresolved"
)

// Actions lists the valid decision actions.
var Actions = []string{ActionPick, ActionSearch, ActionUnresolved}

// DecisionRequest carries everything the oracle sees about one placeholder:
// where it sits in the document, what the document suggested, what the corpus
// can answer, what has been tried, and the current candidate hits.
type DecisionRequest struct {
	// Path is the dotted document path of the placeholder.
	// Example: "code.coding[0]"
	Path string `json:"path"`

	// Display is the display text suggested by the document, if any.
	Display string `json:"display,omitempty"`

	// Systems is the preferred code system scope as canonical URIs.
	Systems []string `json:"systems,omitempty"`

	// Capabilities summarizes the loaded vocabulary landscape.
	Capabilities *core.Capabilities `json:"capabilities,omitempty"`

	// AttemptedQueries lists every query already tried, oldest first.
	AttemptedQueries []string `json:"attempted_queries,omitempty"`

	// RemainingTurns is the number of decision turns left, this one included.
	// When it is 1 the oracle must pick or declare unresolved.
	RemainingTurns int `json:"remaining_turns"`

	// Guidance is advisory text from the search layer, if any.
	Guidance string `json:"guidance,omitempty"`

	// Hits is the current iteration's candidate list, best first.
	Hits []*core.Hit `json:"hits"`
}

// Decision is the oracle's move for one iteration.
type Decision struct {
	// Action is one of ActionPick, ActionSearch, ActionUnresolved.
	Action string `json:"action"`

	// System and Code identify the picked candidate when Action is pick.
	System string `json:"system,omitempty"`
	Code   string `json:"code,omitempty"`

	// Display optionally overrides the picked candidate's display text.
	Display string `json:"display,omitempty"`

	// Terms are the next search terms when Action is search.
	Terms []string `json:"terms,omitempty"`

	// Reason explains an unresolved outcome.
	Reason string `json:"reason,omitempty"`
}

// Validate checks that the decision names a known action and carries that
// action's required fields.
func (d *Decision) Validate() error {
	switch d.Action {
	case ActionPick:
		if d.System == "" || d.Code == "" {
			return fmt.Errorf("%w: pick requires system and code", ErrInvalidDecision)
		}
	case ActionSearch:
		if len(d.Terms) == 0 {
			return fmt.Errorf("%w: search requires terms", ErrInvalidDecision)
		}
	case ActionUnresolved:
		if d.Reason == "" {
			return fmt.Errorf("%w: unresolved requires a reason", ErrInvalidDecision)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidDecision, d.Action)
	}
	return nil
}
