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


package resolvit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/ai/openai"
	"github.com/poiesic/resolvit/ingestion"
	"github.com/poiesic/resolvit/resolve"
	"github.com/poiesic/resolvit/search"
	"github.com/poiesic/resolvit/storage"
	"github.com/poiesic/resolvit/storage/badger"
	"github.com/poiesic/resolvit/storage/sqlite"
)

// Engine bundles the stores and collaborators of one terminology data
// directory: the sqlite concept store, the badger decision cache, and the
// decider in front of the oracle. Loaders, searchers, and resolvers are
// created from it pre-wired.
type Engine struct {
	concepts     storage.ConceptRepository
	backend      *badger.Backend
	decisions    storage.DecisionRepository
	decider      ai.Decider
	searchConfig *search.Config
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	decider      ai.Decider
	searchConfig *search.Config
	inMemory     bool
}

// WithOracleConfig sets the oracle client configuration used when no
// explicit decider is provided.
func WithOracleConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithDecider installs a decider directly, bypassing the oracle client.
// Useful for tests and offline runs.
func WithDecider(decider ai.Decider) EngineOption {
	return func(o *engineOptions) {
		o.decider = decider
	}
}

// WithSearchConfig sets the search tuning applied to every searcher the
// engine creates.
func WithSearchConfig(config search.Config) EngineOption {
	return func(o *engineOptions) {
		o.searchConfig = &config
	}
}

// WithInMemory keeps both stores in memory. The data directory is ignored
// and nothing is written to disk.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// New opens an engine over the given data directory, creating it when
// missing. Concepts live in <dataDir>/concepts.db, cached decisions under
// <dataDir>/decisions.
func New(dataDir string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	var concepts storage.ConceptRepository
	var err error
	if options.inMemory {
		concepts, err = sqlite.NewMemoryStore()
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		concepts, err = sqlite.NewStore(filepath.Join(dataDir, "concepts.db"))
	}
	if err != nil {
		return nil, err
	}

	// Open decision cache
	backend, err := badger.OpenBackend(filepath.Join(dataDir, "decisions"), options.inMemory)
	if err != nil {
		concepts.Close()
		return nil, err
	}
	decisions := badger.NewDecisionRepository(backend)

	// Create decider with configured settings
	decider := options.decider
	if decider == nil {
		decider, err = openai.NewDecider(options.aiConfig)
		if err != nil {
			backend.Close()
			concepts.Close()
			return nil, err
		}
	}

	return &Engine{
		concepts:     concepts,
		backend:      backend,
		decisions:    decisions,
		decider:      decider,
		searchConfig: options.searchConfig,
		logger:       slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	// Close repositories
	if err := e.decisions.Close(); err != nil {
		e.logger.Error("error closing decision repository", "err", err)
	}
	if err := e.concepts.Close(); err != nil {
		e.logger.Error("error closing concept store", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing decision backend", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Concepts() storage.ConceptRepository {
	return e.concepts
}

func (e *Engine) Decisions() storage.DecisionRepository {
	return e.decisions
}

func (e *Engine) NewLoader(opts ...ingestion.Option) (*ingestion.Loader, error) {
	return ingestion.NewLoader(e.concepts, opts...)
}

func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	systems, err := search.NewSystemResolver(e.concepts)
	if err != nil {
		return nil, err
	}
	if e.searchConfig != nil {
		opts = append([]search.Option{search.WithConfig(*e.searchConfig)}, opts...)
	}
	return search.NewSearcher(e.concepts, systems, opts...)
}

func (e *Engine) NewResolver(opts ...resolve.Option) (*resolve.Resolver, error) {
	searcher, err := e.NewSearcher()
	if err != nil {
		return nil, err
	}
	opts = append([]resolve.Option{resolve.WithDecisionCache(e.decisions)}, opts...)
	return resolve.NewResolver(searcher, e.decider, opts...)
}
