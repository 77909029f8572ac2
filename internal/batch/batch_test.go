package batch

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

func TestToBatchesPacksGreedily(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cccc", "dddd"}

	batches, err := ToBatches(lines, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc\ndddd"}, batches)

	batches, err = ToBatches(lines, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc", "dddd"}, batches)

	batches, err = ToBatches(lines, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa\nbbbb\ncccc\ndddd"}, batches)
}

func TestToBatchesDedupesAndTrims(t *testing.T) {
	batches, err := ToBatches([]string{"  b  ", "a", "", "b", "\t", "a"}, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb"}, batches)

	batches, err = ToBatches(nil, 100)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestToBatchesLineLimits(t *testing.T) {
	batches, err := ToBatches([]string{"12345"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"12345"}, batches)

	_, err = ToBatches([]string{"ok", "123456"}, 5)
	assert.ErrorIs(t, err, ErrLineTooLong)

	_, err = ToBatches([]string{"x"}, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestToBatchesProperties(t *testing.T) {
	var lines []string
	for i := range 500 {
		lines = append(lines, fmt.Sprintf("<urn:s%d> <urn:p> %q .", i%350, strings.Repeat("x", i%37)))
	}

	for _, size := range []int{64, 100, 257, 4096} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			batches, err := ToBatches(lines, size)
			require.NoError(t, err)

			want := slices.Clone(lines)
			slices.Sort(want)
			want = slices.Compact(want)

			assert.Equal(t, strings.Join(want, "\n"), strings.Join(batches, "\n"))
			assert.LessOrEqual(t, len(batches), len(want))
			for _, b := range batches {
				assert.NotEmpty(t, b)
				assert.LessOrEqual(t, len(b), size)
			}
		})
	}
}

func TestFromGraph(t *testing.T) {
	g := graph.New()
	for i := range 10 {
		g.Add(rdf.Triple{
			S: rdf.IRI{Value: fmt.Sprintf("https://example.org/subject#%d", i)},
			P: rdf.IRI{Value: "https://example.org/value"},
			O: rdf.Literal{Lexical: fmt.Sprint(i)},
		})
	}

	batches, err := FromGraph(g, 200)
	require.NoError(t, err)
	require.Greater(t, len(batches), 1)
	assert.Equal(t, strings.Join(g.Lines(), "\n"), strings.Join(batches, "\n"))
}
