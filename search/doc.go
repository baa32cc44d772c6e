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


// Package search provides scope-aware full-text search over code system
// concepts.
//
// The Searcher type layers three capabilities over the concept store:
//   - System resolution: free-form system identifiers (aliases, versioned
//     URIs, authority URLs, near-miss spellings) are mapped onto the
//     canonical URIs of loaded code systems
//   - Relevance-ranked full-text search over designation labels
//   - Guidance: advisory text and a full-system fallback that lists an
//     entire small vocabulary when token search comes up empty
//
// Index and scope failures degrade to empty results with a warning log
// rather than surfacing as errors, so a resolution run never dies on a
// transient search problem.
package search
