package docsystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePatch_ApplyPatches(t *testing.T) {
	tests := []struct {
		name  string
		steps []string
	}{
		{name: "append", steps: []string{"hello", "hello world"}},
		{name: "from empty", steps: []string{"", "first line\nsecond line"}},
		{name: "to empty", steps: []string{"something", ""}},
		{name: "several edits", steps: []string{"a b c", "a B c", "a B c d", "B c d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patches []string
			for i := 1; i < len(tt.steps); i++ {
				patches = append(patches, MakePatch(tt.steps[i-1], tt.steps[i]))
			}

			got, err := ApplyPatches(tt.steps[0], patches)
			require.NoError(t, err)
			assert.Equal(t, tt.steps[len(tt.steps)-1], got)
		})
	}
}

func TestMakePatch_NoChangeIsEmpty(t *testing.T) {
	assert.Empty(t, MakePatch("same", "same"))

	got, err := ApplyPatches("same", []string{""})
	require.NoError(t, err)
	assert.Equal(t, "same", got)
}

func TestApplyPatches_Malformed(t *testing.T) {
	_, err := ApplyPatches("hello", []string{"@@ not a patch"})
	assert.Error(t, err)
}
