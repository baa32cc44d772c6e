package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/storage"
)

const (
	defaultBatchSize = 500

	// maxLineBytes bounds a single NDJSON record. Designation-heavy
	// concepts outgrow the bufio.Scanner default of 64 KiB.
	maxLineBytes = 1024 * 1024
)

// displayUse marks the designation row that carries a concept's canonical
// display, so search can surface it ahead of synonyms.
const displayUse = "display"

// Loader ingests NDJSON code system bundles into a concept repository.
type Loader struct {
	repository storage.ConceptRepository
	batchSize  int
	logger     *slog.Logger

	progressWriter   io.Writer
	progressInterval int
}

// Summary reports what one load pass ingested.
type Summary struct {
	// Systems counts descriptor records seen.
	Systems int

	// Concepts counts concept records written.
	Concepts int

	// Designations counts searchable labels written, displays included.
	Designations int

	// Skipped counts malformed or incomplete records left out.
	Skipped int
}

// Option is a functional option for configuring a Loader
type Option func(*Loader) error

// WithBatchSize sets how many concepts accumulate before a write.
// Values below 1 are raised to 1. Default is 500.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		l.batchSize = size
		return nil
	}
}

// WithLogger sets the logger for the loader.
// If logger is nil, slog.Default() will be used.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithProgress reports load progress to w every interval concept records,
// typically os.Stderr. Intervals below 1 are raised to 1.
func WithProgress(w io.Writer, interval int) Option {
	return func(l *Loader) error {
		if interval < 1 {
			interval = 1
		}
		l.progressWriter = w
		l.progressInterval = interval
		return nil
	}
}

// NewLoader creates a Loader writing into the given repository.
func NewLoader(repository storage.ConceptRepository, opts ...Option) (*Loader, error) {
	if repository == nil {
		return nil, ErrConceptRepositoryRequired
	}

	l := &Loader{
		repository: repository,
		batchSize:  defaultBatchSize,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// LoadFile loads one NDJSON bundle from disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return l.LoadStream(ctx, file)
}

// LoadStream ingests an NDJSON stream. The first record must be a CodeSystem
// descriptor; later descriptors switch the system the following concepts
// belong to. Malformed records are skipped with a warning and counted in the
// summary. Concept counts are refreshed and the system cache invalidated
// once at the end, so readers never observe half-loaded totals.
//
// The returned summary reflects work done so far even when an error cuts the
// load short.
func (l *Loader) LoadStream(ctx context.Context, r io.Reader) (*Summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	summary := &Summary{}
	batch := newConceptBatch(l.repository, summary)

	var tracker *progressTracker
	if l.progressWriter != nil {
		tracker = newProgressTracker(l.progressWriter, l.progressInterval)
		tracker.Start()
	}

	currentSystem := ""
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		lineNo++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var probe probeLine
		if err := json.Unmarshal(line, &probe); err != nil {
			summary.Skipped++
			l.logger.Warn("skipping malformed record", "line", lineNo, "err", err)
			continue
		}

		if probe.URL != "" {
			system, err := l.loadDescriptor(ctx, line)
			if err != nil {
				return summary, err
			}
			currentSystem = system
			summary.Systems++
			continue
		}

		if currentSystem == "" {
			return summary, ErrMissingDescriptor
		}

		if probe.Code == "" {
			summary.Skipped++
			l.logger.Warn("skipping record without code", "line", lineNo, "system", currentSystem)
			continue
		}

		var record conceptLine
		if err := json.Unmarshal(line, &record); err != nil {
			summary.Skipped++
			l.logger.Warn("skipping malformed concept", "line", lineNo, "err", err)
			continue
		}

		batch.add(currentSystem, &record)
		if tracker != nil {
			tracker.Increment(1)
		}

		if batch.full(l.batchSize) {
			if err := batch.flush(ctx); err != nil {
				return summary, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("reading stream: %w", err)
	}

	if err := batch.flush(ctx); err != nil {
		return summary, err
	}

	if summary.Systems == 0 {
		return summary, ErrMissingDescriptor
	}

	if err := l.repository.RefreshConceptCounts(ctx); err != nil {
		return summary, fmt.Errorf("refreshing concept counts: %w", err)
	}
	l.repository.InvalidateSystems()

	if tracker != nil {
		tracker.Finish()
	}

	l.logger.Info("load complete",
		"systems", summary.Systems,
		"concepts", summary.Concepts,
		"designations", summary.Designations,
		"skipped", summary.Skipped)
	return summary, nil
}

func (l *Loader) loadDescriptor(ctx context.Context, line []byte) (string, error) {
	var d descriptorLine
	if err := json.Unmarshal(line, &d); err != nil {
		return "", fmt.Errorf("decoding descriptor: %w", err)
	}

	meta := &core.CodeSystemMeta{
		System:  d.URL,
		Version: d.Version,
		Name:    d.Name,
		Title:   d.Title,
	}
	if err := l.repository.AddCodeSystem(ctx, meta); err != nil {
		return "", fmt.Errorf("registering code system %s: %w", d.URL, err)
	}

	l.logger.Info("loading code system",
		"system", d.URL, "version", d.Version, "name", d.Name)
	return d.URL, nil
}

// conceptBatch accumulates concepts and designations until a flush writes
// them through in one repository call each.
type conceptBatch struct {
	repository   storage.ConceptRepository
	summary      *Summary
	concepts     []*core.Concept
	designations []*core.Designation
}

func newConceptBatch(repository storage.ConceptRepository, summary *Summary) *conceptBatch {
	return &conceptBatch{repository: repository, summary: summary}
}

func (b *conceptBatch) add(system string, record *conceptLine) {
	concept := &core.Concept{
		System:  system,
		Code:    record.Code,
		Display: record.Display,
	}
	concept.ComputeId()
	b.concepts = append(b.concepts, concept)

	if record.Display != "" {
		b.designations = append(b.designations, &core.Designation{
			ConceptId: concept.Id,
			Label:     record.Display,
			UseCode:   displayUse,
		})
	}
	for _, d := range record.Designation {
		if strings.TrimSpace(d.Value) == "" {
			continue
		}
		useCode := ""
		if d.Use != nil {
			useCode = d.Use.Code
		}
		b.designations = append(b.designations, &core.Designation{
			ConceptId: concept.Id,
			Label:     d.Value,
			UseCode:   useCode,
		})
	}
}

func (b *conceptBatch) full(batchSize int) bool {
	return len(b.concepts) >= batchSize
}

func (b *conceptBatch) flush(ctx context.Context) error {
	if len(b.concepts) > 0 {
		if err := b.repository.AddConcepts(ctx, b.concepts...); err != nil {
			return fmt.Errorf("adding concepts: %w", err)
		}
	}
	if len(b.designations) > 0 {
		if err := b.repository.AddDesignations(ctx, b.designations...); err != nil {
			return fmt.Errorf("adding designations: %w", err)
		}
	}

	b.summary.Concepts += len(b.concepts)
	b.summary.Designations += len(b.designations)
	b.concepts = b.concepts[:0]
	b.designations = b.designations[:0]
	return nil
}
