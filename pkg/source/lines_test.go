package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
)

func TestComputeLineHashes(t *testing.T) {
	t.Parallel()

	hashes := source.ComputeLineHashes("int a = 1;\n\n  int  a=1 ;\t\n")
	require.Len(t, hashes, 3)

	assert.Equal(t, hashes[0], hashes[2], "whitespace does not change the hash")
	assert.Empty(t, hashes[1])
	assert.Len(t, hashes[0], 32)
	assert.Nil(t, source.ComputeLineHashes(""))
}

func TestLineSet(t *testing.T) {
	t.Parallel()

	set := source.NewLineSet(10, 3, 10)

	assert.Len(t, set, 2)
	assert.True(t, set.Contains(3))
	assert.False(t, set.Contains(4))
	assert.Equal(t, []int{3, 10}, set.Sorted())
}

func TestChangedLinesBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reference string
		current   string
		want      []int
	}{
		{name: "identical", reference: "a\nb\n", current: "a\nb\n", want: nil},
		{name: "missing final newline", reference: "a\nb", current: "a\nb\n", want: nil},
		{name: "line edited", reference: "a\nb\nc\n", current: "a\nB\nc\n", want: []int{2}},
		{name: "lines appended", reference: "a\n", current: "a\nb\nc\n", want: []int{2, 3}},
		{name: "line removed", reference: "a\nb\nc\n", current: "a\nc\n", want: nil},
		{name: "new file", reference: "", current: "x\ny\n", want: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, source.ChangedLinesBetween(tt.reference, tt.current))
		})
	}
}
