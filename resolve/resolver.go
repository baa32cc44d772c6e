package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/search"
	"github.com/poiesic/resolvit/storage"
)

const (
	defaultResourceGroup    = 3
	defaultPlaceholderGroup = 5
	defaultMaxIterations    = 5

	// defaultMaxRequestHits caps the candidate list sent to the decider.
	defaultMaxRequestHits = 50
)

// Resolver fills code placeholders across a batch of decoded JSON resources.
// Resources are worked in fixed-size concurrent groups, and the placeholders
// inside each resource in groups of their own. A group finishes before the
// next one starts.
type Resolver struct {
	searcher  *search.Searcher
	decider   ai.Decider
	decisions storage.DecisionRepository
	monitor   ResolveMonitor
	logger    *slog.Logger

	resourceGroup    int
	placeholderGroup int
	maxIterations    int
	maxHits          int

	resourcePool    *ants.Pool
	placeholderPool *ants.Pool
}

// Report summarizes one batch run.
type Report struct {
	// Resolved counts placeholders that received a concept.
	Resolved int

	// Failures maps "ref#pointer" to the failure record for every
	// placeholder that did not resolve.
	Failures map[string]*core.ResolutionFailure
}

// Option is a functional option for configuring a Resolver
type Option func(*Resolver) error

// WithResourceConcurrency sets how many resources resolve at once.
// Values below 1 are raised to 1. Default is 3.
func WithResourceConcurrency(size int) Option {
	return func(r *Resolver) error {
		if size < 1 {
			size = 1
		}
		r.resourceGroup = size
		return nil
	}
}

// WithPlaceholderConcurrency sets how many placeholders per resource resolve
// at once. Values below 1 are raised to 1. Default is 5.
func WithPlaceholderConcurrency(size int) Option {
	return func(r *Resolver) error {
		if size < 1 {
			size = 1
		}
		r.placeholderGroup = size
		return nil
	}
}

// WithMaxIterations sets the search-decide budget per placeholder.
// Values below 1 are raised to 1. Default is 5.
func WithMaxIterations(iterations int) Option {
	return func(r *Resolver) error {
		if iterations < 1 {
			iterations = 1
		}
		r.maxIterations = iterations
		return nil
	}
}

// WithDecisionCache wires a repository that replays prior decider answers.
// Without one every consultation reaches the live decider.
func WithDecisionCache(decisions storage.DecisionRepository) Option {
	return func(r *Resolver) error {
		r.decisions = decisions
		return nil
	}
}

// WithMonitor registers an observer for resolution progress.
func WithMonitor(monitor ResolveMonitor) Option {
	return func(r *Resolver) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithLogger sets the logger for the resolver.
// If logger is nil, slog.Default() will be used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResolver creates a Resolver backed by the given searcher and decider.
//
// Returns an error if either collaborator is nil or the worker pools cannot
// be created. Call Release when done to reclaim the pools.
func NewResolver(searcher *search.Searcher, decider ai.Decider, opts ...Option) (*Resolver, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if decider == nil {
		return nil, ErrDeciderRequired
	}

	r := &Resolver{
		searcher:         searcher,
		decider:          decider,
		monitor:          &noopMonitor{},
		logger:           slog.Default(),
		resourceGroup:    defaultResourceGroup,
		placeholderGroup: defaultPlaceholderGroup,
		maxIterations:    defaultMaxIterations,
		maxHits:          defaultMaxRequestHits,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	resourcePool, err := ants.NewPool(r.resourceGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource pool: %w", err)
	}

	// Sized so every in-flight resource can run a full placeholder group.
	placeholderPool, err := ants.NewPool(r.resourceGroup * r.placeholderGroup)
	if err != nil {
		resourcePool.Release()
		return nil, fmt.Errorf("failed to create placeholder pool: %w", err)
	}

	r.resourcePool = resourcePool
	r.placeholderPool = placeholderPool

	return r, nil
}

// Resolve walks every resource in the batch, resolves the placeholders it
// finds, and mutates the resources in place. Placeholder failures never stop
// their siblings; they are collected in the returned report.
func (r *Resolver) Resolve(ctx context.Context, resources []any) (*Report, error) {
	report := &Report{Failures: make(map[string]*core.ResolutionFailure)}
	if len(resources) == 0 {
		return report, nil
	}

	capabilities := r.capabilitySnapshot(ctx)

	var mu sync.Mutex

	for start := 0; start < len(resources); start += r.resourceGroup {
		end := min(start+r.resourceGroup, len(resources))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			index := i
			resource := resources[i]
			wg.Add(1)
			err := r.resourcePool.Submit(func() {
				defer wg.Done()
				r.resolveResource(ctx, resource, index, capabilities, report, &mu)
			})
			if err != nil {
				wg.Done()
				wg.Wait()
				return report, fmt.Errorf("failed to submit resource task: %w", err)
			}
		}
		wg.Wait()
	}

	return report, nil
}

// resolveResource discovers and resolves the placeholders of one resource,
// in groups of placeholderGroup.
func (r *Resolver) resolveResource(ctx context.Context, resource any, index int, capabilities *core.Capabilities, report *Report, mu *sync.Mutex) {
	ref := resourceRef(resource, index)
	found := discoverPlaceholders(resource)
	if len(found) == 0 {
		return
	}
	r.logger.Debug("resolving resource", "ref", ref, "placeholders", len(found))

	for start := 0; start < len(found); start += r.placeholderGroup {
		end := min(start+r.placeholderGroup, len(found))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			item := found[i]
			wg.Add(1)
			err := r.placeholderPool.Submit(func() {
				defer wg.Done()
				failure := r.resolveOne(ctx, ref, capabilities, item)

				mu.Lock()
				defer mu.Unlock()
				if failure != nil {
					report.Failures[ref+"#"+item.placeholder.Pointer] = failure
				} else {
					report.Resolved++
				}
			})
			if err != nil {
				wg.Done()
				r.logger.Error("failed to submit placeholder task",
					"ref", ref, "err", err)
			}
		}
		wg.Wait()
	}
}

func (r *Resolver) resolveOne(ctx context.Context, ref string, capabilities *core.Capabilities, item *discovered) *core.ResolutionFailure {
	s := &session{
		searcher:      r.searcher,
		decider:       r.decider,
		decisions:     r.decisions,
		capabilities:  capabilities,
		monitor:       r.monitor,
		logger:        r.logger,
		maxIterations: r.maxIterations,
		maxHits:       r.maxHits,
		ref:           ref,
		placeholder:   item.placeholder,
		node:          item.node,
	}
	return s.run(ctx)
}

// capabilitySnapshot fetches the vocabulary summary once per batch. A
// storage error degrades to an absent summary rather than failing the run.
func (r *Resolver) capabilitySnapshot(ctx context.Context) *core.Capabilities {
	capabilities, err := r.searcher.Capabilities(ctx)
	if err != nil {
		r.logger.Warn("capability summary unavailable", "err", err)
		return nil
	}
	return capabilities
}

// Release returns the worker pools. The resolver must not be used after.
func (r *Resolver) Release() {
	if r.resourcePool != nil {
		r.resourcePool.Release()
	}
	if r.placeholderPool != nil {
		r.placeholderPool.Release()
	}
}
