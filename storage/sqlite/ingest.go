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
	"context"
	"fmt"

	"github.com/poiesic/resolvit/core"
)

// AddCodeSystem inserts or updates a code system descriptor. The concept
// count is kept on update so a refreshed live count survives re-declaring
// the system.
func (s *Store) AddCodeSystem(ctx context.Context, meta *core.CodeSystemMeta) error {
	if err := core.ValidateCodeSystemMeta(meta); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO code_systems (system, version, name, title, concept_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (system) DO UPDATE SET
			version = excluded.version,
			name = excluded.name,
			title = excluded.title`,
		meta.System, meta.Version, meta.Name, meta.Title, meta.ConceptCount)
	if err != nil {
		return fmt.Errorf("upserting code system %s: %w", meta.System, err)
	}

	return nil
}

// AddConcepts stores concepts under their content-derived IDs. Re-adding a
// (system, code) pair refreshes the display, so corpus re-ingestion is
// idempotent.
func (s *Store) AddConcepts(ctx context.Context, concepts ...*core.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO concepts (id, system, code, display) VALUES (?, ?, ?, ?)
		 ON CONFLICT (system, code) DO UPDATE SET display = excluded.display`)
	if err != nil {
		return fmt.Errorf("preparing concept insert: %w", err)
	}
	defer stmt.Close()

	for _, concept := range concepts {
		if err := core.ValidateConcept(concept); err != nil {
			return err
		}
		if concept.Id == 0 {
			concept.ComputeId()
		}
		if _, err := stmt.ExecContext(ctx,
			int64(concept.Id), concept.System, concept.Code, concept.Display); err != nil {
			return fmt.Errorf("inserting concept %s: %w", concept.Key(), err)
		}
	}

	return tx.Commit()
}

// AddDesignations stores searchable labels. Duplicate (concept, label, use)
// triples are silently skipped by the unique index.
func (s *Store) AddDesignations(ctx context.Context, designations ...*core.Designation) error {
	if len(designations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO designations (concept_id, label, use_code) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing designation insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range designations {
		if err := core.ValidateDesignation(d); err != nil {
			return err
		}
		var use any
		if d.UseCode != "" {
			use = d.UseCode
		}
		if _, err := stmt.ExecContext(ctx, int64(d.ConceptId), d.Label, use); err != nil {
			return fmt.Errorf("inserting designation %q: %w", d.Label, err)
		}
	}

	return tx.Commit()
}

// RefreshConceptCounts rewrites every descriptor's concept count from the
// live concept table.
func (s *Store) RefreshConceptCounts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE code_systems SET concept_count = (
			SELECT COUNT(*) FROM concepts WHERE concepts.system = code_systems.system
		)`)
	if err != nil {
		return fmt.Errorf("refreshing concept counts: %w", err)
	}
	return nil
}
