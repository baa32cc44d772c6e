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


// Package resolve fills code placeholders in decoded JSON documents.
//
// A placeholder is an object node carrying placeholderDisplay,
// placeholderSystem, or placeholderCode marker fields. The resolver walks
// each resource, finds its placeholders, and runs a bounded search-decide
// loop per placeholder: query the concept index, show the candidates to an
// ai.Decider, and act on its answer. An accepted pick writes system, code,
// and display onto the node and strips the markers. Anything else ends in a
// failure record that keeps the full attempt history.
//
// # Concurrency
//
// Batches run on two worker pools. Resources resolve in groups (default 3),
// and the placeholders inside a resource in groups of their own (default 5).
// Each group drains before the next begins, so a slow placeholder delays only
// its group. Failures are local to their placeholder and never abort
// siblings.
//
// # Decision Caching
//
// With a storage.DecisionRepository attached, every decider answer is stored
// under a content hash of the consultation. Re-running an identical batch
// against unchanged vocabularies replays from the cache without reaching the
// decider at all.
//
// # Usage Example
//
//	resolver, err := resolve.NewResolver(searcher, decider,
//		resolve.WithDecisionCache(decisions),
//		resolve.WithMaxIterations(5),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer resolver.Release()
//
//	report, err := resolver.Resolve(ctx, resources)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("resolved %d, failed %d\n", report.Resolved, len(report.Failures))
package resolve
