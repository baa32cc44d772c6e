package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/storage"
)

const maritalSystem = "http://terminology.hl7.org/CodeSystem/v3-MaritalStatus"

// newSeededStore builds an in-memory store with a small three-system corpus.
func newSeededStore(t *testing.T) storage.ConceptRepository {
	t.Helper()

	repo := newTestStore(t)
	ctx := context.Background()

	systems := []*core.CodeSystemMeta{
		{System: "http://loinc.org", Version: "2.76", Name: "LOINC"},
		{System: "http://snomed.info/sct", Version: "20240301", Name: "SNOMED CT"},
		{System: maritalSystem, Version: "3.0.0", Name: "MaritalStatus"},
	}
	for _, meta := range systems {
		if err := repo.AddCodeSystem(ctx, meta); err != nil {
			t.Fatalf("Failed to add code system %s: %v", meta.System, err)
		}
	}

	concepts := []*core.Concept{
		{System: "http://loinc.org", Code: "2345-7", Display: "Glucose [Mass/volume] in Serum or Plasma"},
		{System: "http://loinc.org", Code: "2339-0", Display: "Glucose [Mass/volume] in Blood"},
		{System: "http://loinc.org", Code: "718-7", Display: "Hemoglobin [Mass/volume] in Blood"},
		{System: "http://snomed.info/sct", Code: "73211009", Display: "Diabetes mellitus"},
		{System: "http://snomed.info/sct", Code: "44054006", Display: "Diabetes mellitus type 2"},
		{System: maritalSystem, Code: "M", Display: "Married"},
		{System: maritalSystem, Code: "S", Display: "Never Married"},
	}
	if err := repo.AddConcepts(ctx, concepts...); err != nil {
		t.Fatalf("Failed to add concepts: %v", err)
	}

	var designations []*core.Designation
	for _, concept := range concepts {
		designations = append(designations, &core.Designation{
			ConceptId: concept.Id,
			Label:     concept.Display,
			UseCode:   "display",
		})
	}
	designations = append(designations,
		&core.Designation{ConceptId: concepts[1].Id, Label: "Blood sugar", UseCode: "synonym"},
		&core.Designation{ConceptId: concepts[3].Id, Label: "DM", UseCode: "synonym"},
	)
	if err := repo.AddDesignations(ctx, designations...); err != nil {
		t.Fatalf("Failed to add designations: %v", err)
	}

	if err := repo.RefreshConceptCounts(ctx); err != nil {
		t.Fatalf("Failed to refresh counts: %v", err)
	}
	repo.InvalidateSystems()

	return repo
}

func TestSearchDesignations(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	hits, err := repo.SearchDesignations(ctx, `"glucose"`, nil, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}

	// Best match first
	for i := 0; i < len(hits)-1; i++ {
		if hits[i].Score < hits[i+1].Score {
			t.Fatal("Hits should be ordered by score descending")
		}
	}

	for _, hit := range hits {
		if hit.System != "http://loinc.org" {
			t.Fatalf("Expected LOINC hit, got %s", hit.System)
		}
		if hit.Display == "" {
			t.Fatal("Expected display to be populated")
		}
	}
}

func TestSearchDesignations_AllTermsMustMatch(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	hits, err := repo.SearchDesignations(ctx, `"glucose" "blood"`, nil, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit with both terms, got %d", len(hits))
	}
	if hits[0].Code != "2339-0" {
		t.Fatalf("Expected code 2339-0, got %s", hits[0].Code)
	}
}

func TestSearchDesignations_ScopeRestricts(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	scope := []string{"http://snomed.info/sct"}
	hits, err := repo.SearchDesignations(ctx, `"glucose"`, scope, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("Expected no SNOMED glucose hits, got %d", len(hits))
	}

	hits, err = repo.SearchDesignations(ctx, `"diabetes"`, scope, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 SNOMED hits, got %d", len(hits))
	}
	for _, hit := range hits {
		if hit.System != "http://snomed.info/sct" {
			t.Fatalf("Hit outside scope: %s", hit.System)
		}
	}
}

func TestSearchDesignations_SynonymFindsConcept(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	hits, err := repo.SearchDesignations(ctx, `"sugar"`, nil, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit via synonym, got %d", len(hits))
	}

	// The hit carries the canonical display, not the matching synonym
	if hits[0].Display != "Glucose [Mass/volume] in Blood" {
		t.Fatalf("Expected canonical display, got %q", hits[0].Display)
	}
}

func TestSearchDesignations_Limit(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	hits, err := repo.SearchDesignations(ctx, `"glucose"`, nil, 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected limit to cap hits at 1, got %d", len(hits))
	}
}

func TestSearchDesignations_EmptyMatch(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	_, err := repo.SearchDesignations(ctx, "", nil, 10)
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestListSystemConcepts(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	concepts, err := repo.ListSystemConcepts(ctx, "http://loinc.org", 0)
	if err != nil {
		t.Fatalf("Failed to list concepts: %v", err)
	}
	if len(concepts) != 3 {
		t.Fatalf("Expected 3 concepts, got %d", len(concepts))
	}

	// Ordered by code
	for i := 0; i < len(concepts)-1; i++ {
		if concepts[i].Code > concepts[i+1].Code {
			t.Fatalf("Concepts not ordered by code: %s before %s", concepts[i].Code, concepts[i+1].Code)
		}
	}

	limited, err := repo.ListSystemConcepts(ctx, "http://loinc.org", 2)
	if err != nil {
		t.Fatalf("Failed to list concepts with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Expected 2 concepts with limit, got %d", len(limited))
	}

	none, err := repo.ListSystemConcepts(ctx, "http://unknown.example", 0)
	if err != nil {
		t.Fatalf("Failed to list unknown system: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Expected no concepts for unknown system, got %d", len(none))
	}
}

func TestLookupCode_Missing(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	concept, err := repo.LookupCode(ctx, "http://loinc.org", "__nonexistent__")
	if err != nil {
		t.Fatalf("Expected no error for missing code, got %v", err)
	}
	if concept != nil {
		t.Fatalf("Expected nil concept for missing code, got %+v", concept)
	}
}

func TestSupportedSystems_Memoized(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	systems, err := repo.SupportedSystems(ctx)
	if err != nil {
		t.Fatalf("Failed to list systems: %v", err)
	}
	if len(systems) != 3 {
		t.Fatalf("Expected 3 systems, got %d", len(systems))
	}

	// Sorted URIs
	for i := 0; i < len(systems)-1; i++ {
		if systems[i] > systems[i+1] {
			t.Fatalf("Systems not sorted: %s before %s", systems[i], systems[i+1])
		}
	}

	// A new system is invisible until the cache is invalidated
	err = repo.AddCodeSystem(ctx, &core.CodeSystemMeta{System: "http://unitsofmeasure.org", Name: "UCUM"})
	if err != nil {
		t.Fatalf("Failed to add code system: %v", err)
	}

	cached, err := repo.SupportedSystems(ctx)
	if err != nil {
		t.Fatalf("Failed to list systems: %v", err)
	}
	if len(cached) != 3 {
		t.Fatalf("Expected cached list of 3 systems, got %d", len(cached))
	}

	repo.InvalidateSystems()

	fresh, err := repo.SupportedSystems(ctx)
	if err != nil {
		t.Fatalf("Failed to list systems after invalidation: %v", err)
	}
	if len(fresh) != 4 {
		t.Fatalf("Expected 4 systems after invalidation, got %d", len(fresh))
	}
}

func TestConceptCount(t *testing.T) {
	repo := newSeededStore(t)
	ctx := context.Background()

	count, err := repo.ConceptCount(ctx, "http://snomed.info/sct")
	if err != nil {
		t.Fatalf("Failed to count concepts: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 concepts, got %d", count)
	}

	count, err = repo.ConceptCount(ctx, "http://unknown.example")
	if err != nil {
		t.Fatalf("Failed to count unknown system: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 concepts for unknown system, got %d", count)
	}
}
