package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on punctuation",
			input: "Glucose [Mass/volume] in Serum",
			want:  []string{"glucose", "mass", "volume", "in", "serum"},
		},
		{
			name:  "keeps alphanumeric runs together",
			input: "Hemoglobin A1c level",
			want:  []string{"hemoglobin", "a1c", "level"},
		},
		{
			name:  "drops single-character fragments",
			input: "a b c diabetes",
			want:  []string{"diabetes"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "punctuation only",
			input: "!?  --- ..",
			want:  nil,
		},
		{
			name:  "numeric runs kept, single-digit fragment dropped",
			input: "code 2345-7",
			want:  []string{"code", "2345"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildMatch(t *testing.T) {
	assert.Equal(t, `"glucose" "serum"`, buildMatch([]string{"glucose", "serum"}))
	assert.Equal(t, `"dm"`, buildMatch([]string{"dm"}))
	assert.Equal(t, "", buildMatch(nil))
}
