package openai

import (
	"strings"
	"testing"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt()

	// The schema must be embedded verbatim
	assert.Contains(t, prompt, `"enum": ["pick", "search", "unresolved"]`)
	assert.Contains(t, prompt, "REMAINING TURNS is 1")
}

func TestRenderRequest(t *testing.T) {
	request := &ai.DecisionRequest{
		Path:    "code.coding[0]",
		Display: "blood sugar",
		Systems: []string{"http://loinc.org"},
		Capabilities: &core.Capabilities{
			Supported: []string{"http://loinc.org", "http://snomed.info/sct"},
			Big:       []string{"http://snomed.info/sct"},
		},
		AttemptedQueries: []string{"blood sugar"},
		RemainingTurns:   3,
		Guidance:         "Results are limited.",
		Hits: []*core.Hit{
			{System: "http://loinc.org", Code: "2345-7", Display: "Glucose [Mass/volume] in Serum or Plasma"},
			{System: "http://loinc.org", Code: "2339-0", Display: "Glucose [Mass/volume] in Blood"},
		},
	}

	rendered := renderRequest(request)

	assert.Contains(t, rendered, "PATH: code.coding[0]")
	assert.Contains(t, rendered, "SUGGESTED DISPLAY: blood sugar")
	assert.Contains(t, rendered, "PREFERRED SYSTEMS: http://loinc.org")
	assert.Contains(t, rendered, "LOADED SYSTEMS: http://loinc.org, http://snomed.info/sct")
	assert.Contains(t, rendered, "ATTEMPTED QUERIES: blood sugar")
	assert.Contains(t, rendered, "REMAINING TURNS: 3")
	assert.Contains(t, rendered, "GUIDANCE: Results are limited.")
	assert.Contains(t, rendered, "1. http://loinc.org | 2345-7 | Glucose [Mass/volume] in Serum or Plasma")
	assert.Contains(t, rendered, "2. http://loinc.org | 2339-0 |")
}

func TestRenderRequest_Minimal(t *testing.T) {
	rendered := renderRequest(&ai.DecisionRequest{
		Path:           "code",
		RemainingTurns: 5,
	})

	assert.Contains(t, rendered, "PATH: code")
	assert.Contains(t, rendered, "CANDIDATES: none")
	assert.NotContains(t, rendered, "SUGGESTED DISPLAY")
	assert.NotContains(t, rendered, "GUIDANCE")

	// Candidate numbering restarts per request
	assert.Equal(t, 1, strings.Count(rendered, "PATH:"))
}
