// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the decision oracle contract used during placeholder
// resolution.
//
// The resolver never talks to a language model directly. It assembles a
// DecisionRequest describing one placeholder (document path, suggested
// display, system scope, attempted queries, remaining turn budget, and the
// current candidate hits) and hands it to a Decider, which answers with a
// Decision: pick one candidate, search again with new terms, or declare the
// placeholder unresolved.
//
// # Implementation Packages
//
//   - ai/openai: production implementation driving an OpenAI-compatible
//     chat completion API in JSON mode
//   - ai/mock: test double with injectable behavior and call counting
//
// # Constructor Return Type Pattern
//
// The production constructor (openai.NewDecider) returns the ai.Decider
// INTERFACE to enforce abstraction and prevent coupling to the OpenAI
// implementation. The test constructor (mock.NewMockDecider) returns the
// CONCRETE type so tests can assert call counts and inject behavior via the
// DecideFunc field.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	decider, err := openai.NewDecider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decision, err := decider.Decide(ctx, &ai.DecisionRequest{
//	    Path:           "code.coding[0]",
//	    Display:        "diabetes mellitus",
//	    RemainingTurns: 5,
//	    Hits:           hits,
//	})
package ai
