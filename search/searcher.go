package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/storage"
)

// Searcher provides scope-aware, relevance-ranked concept search over
// designation labels.
type Searcher struct {
	repository storage.ConceptRepository
	resolver   *SystemResolver
	config     Config
	logger     *slog.Logger
}

// SearchOptions narrows a search.
type SearchOptions struct {
	// Systems restricts hits to the given code systems. Entries go through
	// system resolution, so aliases and near-miss URIs are accepted. Empty
	// means unscoped.
	Systems []string

	// Limit caps the number of hits. Zero or below uses the configured
	// default.
	Limit int
}

// GuidedResult carries hits plus advisory context for a decision maker.
type GuidedResult struct {
	Hits  []*core.Hit
	Count int

	// Guidance is optional advisory text about the outcome.
	Guidance string

	// FullSystem reports that Hits is a listing of an entire small
	// vocabulary rather than a token-matched subset.
	FullSystem bool

	// Scope is the resolved system scope the search ran under.
	Scope []string
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the search configuration. Zero fields fall back to
// defaults.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		config.ApplyDefaults()
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repository storage.ConceptRepository,
	resolver *SystemResolver,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrConceptRepositoryRequired
	}
	if resolver == nil {
		return nil, ErrSystemResolverRequired
	}

	s := &Searcher{
		repository: repository,
		resolver:   resolver,
		config:     DefaultConfig(),
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Resolver returns the system resolver the searcher was built with.
func (s *Searcher) Resolver() *SystemResolver {
	return s.resolver
}

// Search returns concepts whose designations match every token of query,
// most relevant first. Index trouble and an unresolvable scope both degrade
// to an empty result.
func (s *Searcher) Search(ctx context.Context, query string, opts SearchOptions) []*core.Hit {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	scope, unresolvable := s.resolveScope(ctx, opts.Systems)
	if unresolvable {
		return nil
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	return s.queryIndex(ctx, tokens, scope, limit)
}

// SearchWithGuidance runs Search and augments the outcome with advisory
// text. When a single small vocabulary is in scope and token search found
// nothing, the result lists the entire vocabulary ranked by string
// similarity to the query instead.
func (s *Searcher) SearchWithGuidance(ctx context.Context, query string, opts SearchOptions) *GuidedResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	scope, unresolvable := s.resolveScope(ctx, opts.Systems)
	tokens := Tokenize(query)

	var hits []*core.Hit
	if len(tokens) > 0 && !unresolvable {
		hits = s.queryIndex(ctx, tokens, scope, limit)
	}

	result := &GuidedResult{Hits: hits, Count: len(hits), Scope: scope}

	if len(hits) == 0 && len(scope) == 1 {
		if full, total, ok := s.fullSystemListing(ctx, query, scope[0], limit); ok {
			result.Hits = full
			result.Count = len(full)
			result.FullSystem = true
			result.Guidance = fullSystemGuidance(scope[0], total)
			return result
		}
	}

	result.Guidance = adviseOnHits(len(hits), len(tokens))
	return result
}

// Capabilities summarizes the loaded vocabulary landscape: everything
// loaded, the big systems a broad query would drown in, and the builtin
// authority-namespaced vocabularies.
func (s *Searcher) Capabilities(ctx context.Context) (*core.Capabilities, error) {
	metas, err := s.repository.SystemMetas(ctx)
	if err != nil {
		return nil, err
	}

	caps := &core.Capabilities{}
	for _, meta := range metas {
		caps.Supported = append(caps.Supported, meta.System)
		if meta.ConceptCount > s.config.BigSystemThreshold {
			caps.Big = append(caps.Big, meta.System)
		}
		if isBuiltinSystem(meta.System) {
			caps.Builtin = append(caps.Builtin, meta.System)
		}
	}

	return caps, nil
}

// CodeExists checks whether a code is loaded. The system identifier goes
// through normalization first, so aliases and near-miss URIs work.
func (s *Searcher) CodeExists(ctx context.Context, system, code string) (bool, string) {
	uri, ok := s.resolver.Normalize(ctx, system)
	if !ok {
		return false, ""
	}

	concept, err := s.repository.LookupCode(ctx, uri, code)
	if err != nil {
		s.logger.Warn("code lookup failed", "system", uri, "code", code, "err", err)
		return false, ""
	}
	if concept == nil {
		return false, ""
	}

	return true, concept.Display
}

// resolveScope maps requested system identifiers onto loaded systems. The
// second return distinguishes "nothing requested" from "requested but
// nothing matched"; the latter must behave like zero hits.
func (s *Searcher) resolveScope(ctx context.Context, requested []string) ([]string, bool) {
	if len(requested) == 0 {
		return nil, false
	}

	resolved := s.resolver.ResolveAll(ctx, requested)
	if len(resolved) == 0 {
		s.logger.Warn("no requested system could be resolved", "requested", requested)
		return nil, true
	}

	return resolved, false
}

func (s *Searcher) queryIndex(ctx context.Context, tokens, scope []string, limit int) []*core.Hit {
	hits, err := s.repository.SearchDesignations(ctx, buildMatch(tokens), scope, limit)
	if err != nil {
		// Index trouble degrades to zero hits so a resolution run keeps going
		s.logger.Warn("designation search failed", "err", err)
		return nil
	}
	return hits
}

// fullSystemListing returns every concept of a small system ranked by
// similarity between the query and the concept display. The store's
// code ordering breaks ties, so an empty query lists deterministically.
func (s *Searcher) fullSystemListing(ctx context.Context, query, system string, limit int) ([]*core.Hit, int, bool) {
	count, err := s.repository.ConceptCount(ctx, system)
	if err != nil {
		s.logger.Warn("concept count failed", "system", system, "err", err)
		return nil, 0, false
	}
	if count == 0 || count > s.config.SmallSystemThreshold {
		return nil, 0, false
	}

	concepts, err := s.repository.ListSystemConcepts(ctx, system, 0)
	if err != nil {
		s.logger.Warn("listing system concepts failed", "system", system, "err", err)
		return nil, 0, false
	}

	hits := make([]*core.Hit, 0, len(concepts))
	for _, concept := range concepts {
		hits = append(hits, &core.Hit{
			System:  concept.System,
			Code:    concept.Code,
			Display: concept.Display,
			Score:   Similarity(query, concept.Display),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, count, true
}

// isBuiltinSystem reports whether a URI lives under an HL7 authority
// namespace rather than an external vocabulary publisher.
func isBuiltinSystem(system string) bool {
	return strings.HasPrefix(system, "http://hl7.org/fhir/") ||
		strings.HasPrefix(system, "http://terminology.hl7.org/")
}
