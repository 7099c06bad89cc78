package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCountsOverlappingMatches(t *testing.T) {
	occ, err := Find(context.Background(), Task{Chunk: "ababab", Keyword: "aba"})
	require.NoError(t, err)
	require.Len(t, occ, 2)

	assert.Equal(t, 0, occ[0].Position)
	assert.Equal(t, 2, occ[1].Position)
	assert.Equal(t, 1, occ[0].Column)
	assert.Equal(t, 3, occ[1].Column)
	assert.Equal(t, "ababa", occ[0].Field)
	assert.Equal(t, "ababab", occ[1].Field)
}

func TestFindLineColumnAndWindows(t *testing.T) {
	content := "héllo\nxx foo yy\nfoo"
	occ, err := Find(context.Background(), Task{Chunk: content, Keyword: "foo"})
	require.NoError(t, err)
	require.Len(t, occ, 2)

	first := occ[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, 4, first.Column)
	assert.Equal(t, 10, first.Position)
	assert.Equal(t, "x ", first.Before)
	assert.Equal(t, " y", first.After)
	assert.Equal(t, "x foo y", first.Field)
	assert.Equal(t, content, first.Context)

	second := occ[1]
	assert.Equal(t, 3, second.Line)
	assert.Equal(t, 1, second.Column)
	assert.Equal(t, 17, second.Position)
	assert.Equal(t, "y\n", second.Before)
	assert.Equal(t, "", second.After)
	assert.Equal(t, "y\nfoo", second.Field)
}

func TestFindColumnsCountRunes(t *testing.T) {
	occ, err := Find(context.Background(), Task{Chunk: "ééfoo", Keyword: "foo"})
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, 3, occ[0].Column)
	assert.Equal(t, 4, occ[0].Position)
	assert.Equal(t, "éé", occ[0].Before)
}

func TestFindUsesLeadAndTailAtChunkEdges(t *testing.T) {
	task := Task{
		Chunk:       "foo\nbar foo",
		ChunkOffset: 100,
		Keyword:     "foo",
		LineNumber:  7,
		Lead:        "xyz\n",
		Tail:        "\nqq",
	}
	occ, err := Find(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, occ, 2)

	assert.Equal(t, 8, occ[0].Line)
	assert.Equal(t, 100, occ[0].Position)
	assert.Equal(t, "z\n", occ[0].Before)
	assert.Equal(t, "\nb", occ[0].After)

	assert.Equal(t, 9, occ[1].Line)
	assert.Equal(t, 5, occ[1].Column)
	assert.Equal(t, 108, occ[1].Position)
	assert.Equal(t, "\nq", occ[1].After)
	assert.Equal(t, "foo\nbar foo\nqq", occ[1].Context[len(occ[1].Context)-14:])
}

func TestFindIgnoresKeywordsSpanningLines(t *testing.T) {
	occ, err := Find(context.Background(), Task{Chunk: "a\nb", Keyword: "a\nb"})
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestFindStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find(ctx, Task{Chunk: "foo", Keyword: "foo"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanChunkStopsInsideLongLine(t *testing.T) {
	old := yieldBytes
	t.Cleanup(func() { yieldBytes = old })
	yieldBytes = 16

	stop := errors.New("stop")
	calls := 0
	occ, err := scanChunk(Task{Chunk: strings.Repeat("a", 100), Keyword: "b"}, func(int, int) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Nil(t, occ)
	assert.Equal(t, 2, calls)
}

func TestFindAcrossScanWindows(t *testing.T) {
	old := yieldBytes
	t.Cleanup(func() { yieldBytes = old })

	line := strings.Repeat("xé", 7) + "abab" + strings.Repeat("y", 9) + "aba" + "ababa\nab"
	yieldBytes = 1 << 20
	want, err := Find(context.Background(), Task{Chunk: line, Keyword: "aba"})
	require.NoError(t, err)
	require.NotEmpty(t, want)

	for _, n := range []int{1, 2, 3, 5, 8} {
		yieldBytes = n
		got, err := Find(context.Background(), Task{Chunk: line, Keyword: "aba"})
		require.NoError(t, err)
		assert.Equal(t, want, got, "yieldBytes=%d", n)
	}
}

func TestCountOverlapping(t *testing.T) {
	cases := []struct {
		content string
		keyword string
		want    int
	}{
		{"ababab", "aba", 2},
		{"aaaa", "aa", 3},
		{"foo bar foo", "foo", 2},
		{"a\nb a\nb", "a\nb", 2},
		{"abc", "", 0},
		{"abc", "zz", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CountOverlapping(tc.content, tc.keyword), "%q in %q", tc.keyword, tc.content)
	}
}
