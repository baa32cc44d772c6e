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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/storage"
)

const defaultDecisionTTL = 24 * time.Hour

// DecisionRepository implements storage.DecisionRepository for BadgerDB.
type DecisionRepository struct {
	backend *Backend
	ttl     time.Duration
}

var _ storage.DecisionRepository = (*DecisionRepository)(nil)

// DecisionOption configures a DecisionRepository.
type DecisionOption func(*DecisionRepository)

// WithDecisionTTL sets how long cached decisions live before BadgerDB
// expires them. A zero or negative duration keeps them forever.
func WithDecisionTTL(ttl time.Duration) DecisionOption {
	return func(r *DecisionRepository) {
		r.ttl = ttl
	}
}

// NewDecisionRepository creates a new DecisionRepository.
func NewDecisionRepository(backend *Backend, opts ...DecisionOption) storage.DecisionRepository {
	r := &DecisionRepository{
		backend: backend,
		ttl:     defaultDecisionTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SaveDecision persists a decision payload under its content hash.
func (r *DecisionRepository) SaveDecision(ctx context.Context, key core.ID, payload []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeDecisionKey(key), payload)
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDecision retrieves a previously saved payload.
// Returns nil, nil if no decision is cached under key.
func (r *DecisionRepository) GetDecision(ctx context.Context, key core.ID) ([]byte, error) {
	var payload []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDecisionKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		payload, err = item.ValueCopy(nil)
		return err
	}, false)

	return payload, err
}

// Close is a no-op. The Backend owns the database handle and is closed
// separately.
func (r *DecisionRepository) Close() error {
	return nil
}
