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


// Package storage provides the storage abstraction layer for resolvit.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. Two backends implement them:
//
//   - sqlite: the concept store. Code systems, concepts, and designations
//     live in SQLite with an FTS5 index over designation labels.
//   - badger: the decision cache. Oracle decisions are persisted in
//     BadgerDB keyed by a content hash of the request that produced them.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	concepts, err := sqlite.NewStore(path)                // returns storage.ConceptRepository
//	decisions := badger.NewDecisionRepository(backend)    // returns storage.DecisionRepository
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to SQLite or BadgerDB specifics
//   - Swappability: Easy to add alternative backends (PostgreSQL, in-memory, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// Internal package constructors (newStore, newBackend, etc.) may return
// concrete types since they're only used within the implementation package.
//
// # Usage
//
// Create the concept store:
//
//	concepts, err := sqlite.NewStore("/path/to/concepts.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer concepts.Close()
//
// Use in tests with in-memory storage:
//
//	concepts, err := sqlite.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer concepts.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
