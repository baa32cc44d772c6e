package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/resolvit/storage"
	"github.com/poiesic/resolvit/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loincBundle = `{"resourceType":"CodeSystem","url":"http://loinc.org","version":"2.77","name":"LOINC","title":"Logical Observation Identifiers Names and Codes","count":3}
{"code":"2345-7","display":"Glucose [Mass/volume] in Serum or Plasma","designation":[{"value":"Blood sugar","use":{"code":"synonym"}},{"value":"Glucose SerPl-mCnc","use":{"code":"short-name"}}]}
{"code":"2339-0","display":"Glucose [Mass/volume] in Blood"}
{"code":"718-7","display":"Hemoglobin [Mass/volume] in Blood"}
`

func newMemoryRepo(t *testing.T) storage.ConceptRepository {
	t.Helper()

	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewLoader(t *testing.T) {
	repo := newMemoryRepo(t)

	t.Run("valid configuration", func(t *testing.T) {
		loader, err := NewLoader(repo)
		require.NoError(t, err)
		assert.NotNil(t, loader)
		assert.Equal(t, defaultBatchSize, loader.batchSize)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewLoader(nil)
		assert.ErrorIs(t, err, ErrConceptRepositoryRequired)
	})

	t.Run("batch size clamped", func(t *testing.T) {
		loader, err := NewLoader(repo, WithBatchSize(0))
		require.NoError(t, err)
		assert.Equal(t, 1, loader.batchSize)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		loader, err := NewLoader(repo, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, loader.logger)
	})
}

func TestLoadStream_SingleSystem(t *testing.T) {
	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadStream(ctx, strings.NewReader(loincBundle))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Systems)
	assert.Equal(t, 3, summary.Concepts)
	assert.Equal(t, 5, summary.Designations, "three displays plus two designations")
	assert.Zero(t, summary.Skipped)

	concept, err := repo.LookupCode(ctx, "http://loinc.org", "2345-7")
	require.NoError(t, err)
	require.NotNil(t, concept)
	assert.Equal(t, "Glucose [Mass/volume] in Serum or Plasma", concept.Display)

	systems, err := repo.SupportedSystems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://loinc.org"}, systems)

	count, err := repo.ConceptCount(ctx, "http://loinc.org")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	metas, err := repo.SystemMetas(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "2.77", metas[0].Version)
	assert.Equal(t, 3, metas[0].ConceptCount, "counts refreshed after load")

	// Synonyms entered the search index.
	hits, err := repo.SearchDesignations(ctx, `"blood" "sugar"`, nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "2345-7", hits[0].Code)
}

func TestLoadStream_MultipleSystems(t *testing.T) {
	bundle := `{"resourceType":"CodeSystem","url":"http://loinc.org","version":"2.77","name":"LOINC"}
{"code":"2345-7","display":"Glucose [Mass/volume] in Serum or Plasma"}
{"resourceType":"CodeSystem","url":"http://snomed.info/sct","version":"20240301","name":"SNOMEDCT"}
{"code":"73211009","display":"Diabetes mellitus"}
{"code":"44054006","display":"Diabetes mellitus type 2"}
`

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadStream(ctx, strings.NewReader(bundle))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Systems)
	assert.Equal(t, 3, summary.Concepts)

	// Concepts landed under the descriptor that preceded them.
	glucose, err := repo.LookupCode(ctx, "http://loinc.org", "2345-7")
	require.NoError(t, err)
	require.NotNil(t, glucose)

	diabetes, err := repo.LookupCode(ctx, "http://snomed.info/sct", "73211009")
	require.NoError(t, err)
	require.NotNil(t, diabetes)

	loincCount, err := repo.ConceptCount(ctx, "http://loinc.org")
	require.NoError(t, err)
	assert.Equal(t, 1, loincCount)

	snomedCount, err := repo.ConceptCount(ctx, "http://snomed.info/sct")
	require.NoError(t, err)
	assert.Equal(t, 2, snomedCount)
}

func TestLoadStream_MissingDescriptor(t *testing.T) {
	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	t.Run("concept before descriptor", func(t *testing.T) {
		_, err := loader.LoadStream(context.Background(),
			strings.NewReader(`{"code":"2345-7","display":"Glucose"}`))
		assert.ErrorIs(t, err, ErrMissingDescriptor)
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := loader.LoadStream(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrMissingDescriptor)
	})

	t.Run("blank lines only", func(t *testing.T) {
		_, err := loader.LoadStream(context.Background(), strings.NewReader("\n\n\n"))
		assert.ErrorIs(t, err, ErrMissingDescriptor)
	})
}

func TestLoadStream_SkipsMalformedRecords(t *testing.T) {
	bundle := `{"resourceType":"CodeSystem","url":"http://loinc.org","version":"2.77"}
{"code":"2345-7","display":"Glucose [Mass/volume] in Serum or Plasma"}
this is not json
{"display":"a record without a code"}
{"code":"718-7","display":"Hemoglobin [Mass/volume] in Blood"}
`

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadStream(ctx, strings.NewReader(bundle))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Concepts)
	assert.Equal(t, 2, summary.Skipped)

	count, err := repo.ConceptCount(ctx, "http://loinc.org")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoadStream_BatchBoundaries(t *testing.T) {
	var lines []string
	lines = append(lines, `{"resourceType":"CodeSystem","url":"http://example.org/lab","version":"1"}`)
	for i := 0; i < 5; i++ {
		lines = append(lines, fmt.Sprintf(`{"code":"c-%d","display":"Concept number %d"}`, i, i))
	}

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo, WithBatchSize(2))
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadStream(ctx, strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Concepts)

	count, err := repo.ConceptCount(ctx, "http://example.org/lab")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestLoadStream_Idempotent(t *testing.T) {
	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = loader.LoadStream(ctx, strings.NewReader(loincBundle))
	require.NoError(t, err)

	summary, err := loader.LoadStream(ctx, strings.NewReader(loincBundle))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Concepts)

	// Content-addressed IDs make the second pass an update, not a
	// duplication.
	count, err := repo.ConceptCount(ctx, "http://loinc.org")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	hits, err := repo.SearchDesignations(ctx, `"glucose"`, nil, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestLoadStream_LongLines(t *testing.T) {
	// A designation far beyond bufio.Scanner's 64 KiB default.
	longLabel := strings.TrimSpace(strings.Repeat("verylongsynonymtoken ", 6000))
	bundle := fmt.Sprintf(`{"resourceType":"CodeSystem","url":"http://example.org/long","version":"1"}
{"code":"L1","display":"Long label concept","designation":[{"value":"%s","use":{"code":"synonym"}}]}
`, longLabel)

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadStream(ctx, strings.NewReader(bundle))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Concepts)
	assert.Equal(t, 2, summary.Designations)
}

func TestLoadStream_ContextCanceled(t *testing.T) {
	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = loader.LoadStream(ctx, strings.NewReader(loincBundle))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStream_ReportsProgress(t *testing.T) {
	var buf bytes.Buffer

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo, WithProgress(&buf, 1))
	require.NoError(t, err)

	_, err = loader.LoadStream(context.Background(), strings.NewReader(loincBundle))
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Loaded 3 records")
	assert.Contains(t, output, "\n", "progress ends with a newline")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loinc.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(loincBundle), 0o644))

	repo := newMemoryRepo(t)
	loader, err := NewLoader(repo)
	require.NoError(t, err)

	ctx := context.Background()
	summary, err := loader.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Concepts)

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFile(ctx, filepath.Join(dir, "nope.ndjson"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening")
	})
}
