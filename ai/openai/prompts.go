package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/resolvit/ai"
)

const decisionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["pick", "search", "unresolved"]
    },
    "system": {
      "type": "string"
    },
    "code": {
      "type": "string"
    },
    "display": {
      "type": "string"
    },
    "terms": {
      "type": "array",
      "items": {"type": "string"}
    },
    "reason": {
      "type": "string"
    }
  },
  "required": ["action"],
  "additionalProperties": false
}`

const decisionPromptTemplate = `You resolve code placeholders in healthcare documents. You are given one
unresolved location together with candidate concepts from the loaded code
systems. Choose the next move and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "pick" selects one candidate. Set "system" and "code" exactly as they appear in the candidate list. Never invent a code.
- "search" requests another lookup. Set "terms" to 1-4 short clinical words. Never repeat a query listed under ATTEMPTED QUERIES.
- "unresolved" gives up. Set "reason" to a short explanation.
- Prefer picking when one candidate clearly matches the suggested display.
- When REMAINING TURNS is 1, search is not allowed: pick or declare unresolved.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (clear match):
Input:
PATH: code.coding[0]
SUGGESTED DISPLAY: glucose in blood
REMAINING TURNS: 5
CANDIDATES:
  1. http://loinc.org | 2339-0 | Glucose [Mass/volume] in Blood
  2. http://loinc.org | 718-7 | Hemoglobin [Mass/volume] in Blood
Output:
{"action":"pick","system":"http://loinc.org","code":"2339-0"}

Example (no candidates yet, turns remain):
Input:
PATH: code.coding[0]
SUGGESTED DISPLAY: sugar diabetes
REMAINING TURNS: 4
CANDIDATES: none
Output:
{"action":"search","terms":["diabetes","mellitus"]}

Example (nothing plausible on the last turn):
Input:
PATH: valueCodeableConcept.coding[0]
SUGGESTED DISPLAY: quantum flux syndrome
REMAINING TURNS: 1
CANDIDATES: none
Output:
{"action":"unresolved","reason":"no matching concept in the loaded code systems"}`

// buildSystemPrompt creates the oracle system prompt with the response
// schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(decisionPromptTemplate, decisionResponseSchema)
}

// renderRequest formats a decision request as the human turn of the chat.
// The layout mirrors the examples in the system prompt.
func renderRequest(request *ai.DecisionRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PATH: %s\n", request.Path)
	if request.Display != "" {
		fmt.Fprintf(&b, "SUGGESTED DISPLAY: %s\n", request.Display)
	}
	if len(request.Systems) > 0 {
		fmt.Fprintf(&b, "PREFERRED SYSTEMS: %s\n", strings.Join(request.Systems, ", "))
	}
	if caps := request.Capabilities; caps != nil && len(caps.Supported) > 0 {
		fmt.Fprintf(&b, "LOADED SYSTEMS: %s\n", strings.Join(caps.Supported, ", "))
		if len(caps.Big) > 0 {
			fmt.Fprintf(&b, "BIG SYSTEMS (use narrow queries): %s\n", strings.Join(caps.Big, ", "))
		}
	}
	if len(request.AttemptedQueries) > 0 {
		fmt.Fprintf(&b, "ATTEMPTED QUERIES: %s\n", strings.Join(request.AttemptedQueries, "; "))
	}
	fmt.Fprintf(&b, "REMAINING TURNS: %d\n", request.RemainingTurns)
	if request.Guidance != "" {
		fmt.Fprintf(&b, "GUIDANCE: %s\n", request.Guidance)
	}

	if len(request.Hits) == 0 {
		b.WriteString("CANDIDATES: none\n")
		return b.String()
	}

	b.WriteString("CANDIDATES:\n")
	for i, hit := range request.Hits {
		fmt.Fprintf(&b, "  %d. %s | %s | %s\n", i+1, hit.System, hit.Code, hit.Display)
	}
	return b.String()
}
