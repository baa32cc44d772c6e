package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestConcept_Key(t *testing.T) {
	tests := []struct {
		name    string
		concept Concept
		want    string
	}{
		{
			name: "basic concept",
			concept: Concept{
				System: "http://loinc.org",
				Code:   "2345-7",
			},
			want: "http://loinc.org|2345-7",
		},
		{
			name: "code with spaces",
			concept: Concept{
				System: "http://snomed.info/sct",
				Code:   "44054006",
			},
			want: "http://snomed.info/sct|44054006",
		},
		{
			name: "empty concept",
			concept: Concept{
				System: "",
				Code:   "",
			},
			want: "|",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.concept.Key()
			if got != tt.want {
				t.Errorf("Concept.Key() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConcept_ComputeId(t *testing.T) {
	a := &Concept{System: "http://loinc.org", Code: "2345-7", Display: "Glucose"}
	b := &Concept{System: "http://loinc.org", Code: "2345-7", Display: "Glucose [Mass/volume]"}
	c := &Concept{System: "http://loinc.org", Code: "2339-0", Display: "Glucose"}

	idA := a.ComputeId()
	idB := b.ComputeId()
	idC := c.ComputeId()

	if idA != b.Id || idA != idB {
		t.Errorf("ComputeId() differs for same (system, code): %d vs %d", idA, idB)
	}
	if idA == idC {
		t.Errorf("ComputeId() produced same ID for different codes")
	}
	if a.Id != idA {
		t.Errorf("ComputeId() did not store the ID on the concept")
	}
}

func TestPlaceholder_SeedQuery(t *testing.T) {
	tests := []struct {
		name        string
		placeholder Placeholder
		want        string
	}{
		{
			name: "single display",
			placeholder: Placeholder{
				PotentialDisplays: []string{"diabetes"},
			},
			want: "diabetes",
		},
		{
			name: "multiple displays joined with spaces",
			placeholder: Placeholder{
				PotentialDisplays: []string{"diabetes mellitus", "type 2 diabetes"},
			},
			want: "diabetes mellitus type 2 diabetes",
		},
		{
			name:        "no displays",
			placeholder: Placeholder{},
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.placeholder.SeedQuery()
			if got != tt.want {
				t.Errorf("Placeholder.SeedQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
