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


package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/poiesic/resolvit/storage"
)

// NewMemoryStore creates an in-memory concept store for testing.
// Caller must close the store when done.
func NewMemoryStore(opts ...Option) (storage.ConceptRepository, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every pooled connection would get its own empty :memory: database.
	// Pin the pool to a single connection so schema and data are shared.
	db.SetMaxOpenConns(1)

	return newStore(db, opts...)
}
