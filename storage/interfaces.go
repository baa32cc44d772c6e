package storage

import (
	"context"

	"github.com/poiesic/resolvit/core"
)

// ConceptRepository provides operations for managing code systems, concepts,
// and their searchable designations. Implementations must be thread-safe and
// support concurrent access.
type ConceptRepository interface {
	// AddCodeSystem inserts or updates a code system descriptor.
	// Re-adding an existing system refreshes its version, name, and title.
	AddCodeSystem(ctx context.Context, meta *core.CodeSystemMeta) error

	// AddConcepts adds one or more concepts to storage.
	// Concepts use content-based IDs derived from their (system, code) key,
	// so re-adding an existing concept updates its display rather than
	// failing or duplicating.
	AddConcepts(ctx context.Context, concepts ...*core.Concept) error

	// AddDesignations adds searchable labels for previously added concepts.
	// Duplicate (concept, label, use) triples are silently skipped.
	AddDesignations(ctx context.Context, designations ...*core.Designation) error

	// RefreshConceptCounts rewrites every descriptor's concept count from
	// the live concept table. Loaders call this once after ingestion.
	RefreshConceptCounts(ctx context.Context) error

	// SearchDesignations runs a full-text query over designation labels.
	// match is an FTS5 match expression. When systems is non-empty, hits
	// are restricted to concepts from those systems. Results are grouped
	// by concept and ordered by relevance (best first), up to limit.
	SearchDesignations(ctx context.Context, match string, systems []string, limit int) ([]*core.Hit, error)

	// ListSystemConcepts returns concepts of a single system ordered by
	// code. A limit of zero or below returns every concept.
	ListSystemConcepts(ctx context.Context, system string, limit int) ([]*core.Concept, error)

	// LookupCode retrieves a concept by its (system, code) pair.
	// Returns (nil, nil) when no such concept is loaded.
	LookupCode(ctx context.Context, system, code string) (*core.Concept, error)

	// SupportedSystems returns the canonical URIs of all loaded systems,
	// sorted. The result is cached until InvalidateSystems is called.
	SupportedSystems(ctx context.Context) ([]string, error)

	// InvalidateSystems drops the cached system list so the next
	// SupportedSystems call reads fresh state. Call after ingestion.
	InvalidateSystems()

	// SystemMetas returns descriptor rows for all loaded systems,
	// sorted by system URI.
	SystemMetas(ctx context.Context) ([]*core.CodeSystemMeta, error)

	// ConceptCount returns the live number of concepts stored for a system.
	ConceptCount(ctx context.Context, system string) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// DecisionRepository persists oracle decisions keyed by a content hash of
// the request that produced them. A resolution run consults it before
// calling the oracle, which lets an interrupted run replay its decisions
// without spending fresh oracle calls.
type DecisionRepository interface {
	// SaveDecision stores the serialized decision payload under key.
	SaveDecision(ctx context.Context, key core.ID, payload []byte) error

	// GetDecision retrieves a previously saved payload.
	// Returns (nil, nil) when no decision is stored under key.
	GetDecision(ctx context.Context, key core.ID) ([]byte, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
