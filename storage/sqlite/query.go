package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/storage"
)

// SearchDesignations runs an FTS5 match over designation labels and returns
// the best-ranked concepts. bm25 ranks are negated so a larger score is a
// better match. When several designations of one concept match, the concept
// appears once with its best score.
func (s *Store) SearchDesignations(ctx context.Context, match string, systems []string, limit int) ([]*core.Hit, error) {
	if match == "" {
		return nil, fmt.Errorf("%w: empty match expression", storage.ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT c.system, c.code, c.display, MIN(bm25(designations_fts)) AS rank
		FROM designations_fts
		JOIN designations d ON d.id = designations_fts.rowid
		JOIN concepts c ON c.id = d.concept_id
		WHERE designations_fts MATCH ?`)
	args = append(args, match)

	if len(systems) > 0 {
		qb.WriteString(` AND c.system IN (?` + strings.Repeat(", ?", len(systems)-1) + `)`)
		for _, system := range systems {
			args = append(args, system)
		}
	}

	qb.WriteString(` GROUP BY c.id ORDER BY rank LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying designations: %w", err)
	}
	defer rows.Close()

	var hits []*core.Hit
	for rows.Next() {
		var (
			hit  core.Hit
			rank float64
		)
		if err := rows.Scan(&hit.System, &hit.Code, &hit.Display, &rank); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hit.Score = -rank
		hits = append(hits, &hit)
	}

	return hits, rows.Err()
}

// ListSystemConcepts returns concepts of a system ordered by code. A limit
// of zero or below returns every concept.
func (s *Store) ListSystemConcepts(ctx context.Context, system string, limit int) ([]*core.Concept, error) {
	query := `SELECT id, system, code, display FROM concepts WHERE system = ? ORDER BY code`
	args := []any{system}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing concepts for %s: %w", system, err)
	}
	defer rows.Close()

	var concepts []*core.Concept
	for rows.Next() {
		var (
			concept core.Concept
			id      int64
		)
		if err := rows.Scan(&id, &concept.System, &concept.Code, &concept.Display); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		concept.Id = core.ID(id)
		concepts = append(concepts, &concept)
	}

	return concepts, rows.Err()
}

// LookupCode retrieves a concept by its (system, code) pair. Returns
// (nil, nil) when the code is not loaded.
func (s *Store) LookupCode(ctx context.Context, system, code string) (*core.Concept, error) {
	var (
		concept core.Concept
		id      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, system, code, display FROM concepts WHERE system = ? AND code = ?`,
		system, code,
	).Scan(&id, &concept.System, &concept.Code, &concept.Display)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s|%s: %w", system, code, err)
	}

	concept.Id = core.ID(id)
	return &concept, nil
}

// SupportedSystems returns the canonical URIs of all loaded systems, sorted.
// The list is cached after the first read; InvalidateSystems drops the cache.
func (s *Store) SupportedSystems(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	if s.systems != nil {
		cached := s.systems
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT system FROM code_systems ORDER BY system`)
	if err != nil {
		return nil, fmt.Errorf("listing systems: %w", err)
	}
	defer rows.Close()

	systems := make([]string, 0, 8)
	for rows.Next() {
		var system string
		if err := rows.Scan(&system); err != nil {
			return nil, fmt.Errorf("scanning system: %w", err)
		}
		systems = append(systems, system)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.systems = systems
	s.mu.Unlock()

	return systems, nil
}

// InvalidateSystems drops the cached system list so the next
// SupportedSystems call reads fresh state.
func (s *Store) InvalidateSystems() {
	s.mu.Lock()
	s.systems = nil
	s.mu.Unlock()
}

// SystemMetas returns descriptors for every loaded system sorted by URI.
func (s *Store) SystemMetas(ctx context.Context) ([]*core.CodeSystemMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT system, version, name, title, concept_count FROM code_systems ORDER BY system`)
	if err != nil {
		return nil, fmt.Errorf("listing code systems: %w", err)
	}
	defer rows.Close()

	var metas []*core.CodeSystemMeta
	for rows.Next() {
		var meta core.CodeSystemMeta
		if err := rows.Scan(&meta.System, &meta.Version, &meta.Name, &meta.Title, &meta.ConceptCount); err != nil {
			return nil, fmt.Errorf("scanning code system: %w", err)
		}
		metas = append(metas, &meta)
	}

	return metas, rows.Err()
}

// ConceptCount returns the live number of concepts stored for a system.
func (s *Store) ConceptCount(ctx context.Context, system string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM concepts WHERE system = ?`, system).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting concepts for %s: %w", system, err)
	}
	return count, nil
}
