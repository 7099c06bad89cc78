package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"kwsweep/internal/replace"
)

func TestTruncateText(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a\tb", 10, "a    b"},
		{"line\r\nnext", 20, "line next"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, truncateText(tc.in, tc.width), tc.in)
	}
}

func TestFlattenContextKeepsRuneCount(t *testing.T) {
	in := "é\tx\r\ny"
	out := flattenContext(in)
	assert.Equal(t, "é x  y", out)
	assert.Equal(t, utf8.RuneCountInString(in), utf8.RuneCountInString(out))
}

func TestFitContextKeepsKeywordVisible(t *testing.T) {
	ctx := strings.Repeat("a", 30) + "foo" + strings.Repeat("b", 30)
	text, pos := fitContext(ctx, 30, 3, 20)

	assert.LessOrEqual(t, utf8.RuneCountInString(text), 20)
	assert.Equal(t, []int{6, 7, 8}, pos)
	runes := []rune(text)
	assert.Equal(t, "foo", string(runes[pos[0]:pos[2]+1]))
}

func TestFitContextShortAndMultibyte(t *testing.T) {
	text, pos := fitContext("é foo\nz", 3, 3, 40)
	assert.Equal(t, "é foo z", text)
	assert.Equal(t, []int{2, 3, 4}, pos)

	text, pos = fitContext("abc", 10, 3, 40)
	assert.Equal(t, "abc", text)
	assert.Empty(t, pos)
}

func TestBuildEmphasisMask(t *testing.T) {
	mask := buildEmphasisMask(4, []int{1, 2, 9, -1})
	assert.Equal(t, []bool{false, true, true, false}, mask)
	assert.Nil(t, buildEmphasisMask(4, nil))
	assert.False(t, emphasisAt(mask, 7))
}

func TestPadRightANSI(t *testing.T) {
	assert.Equal(t, "ab  ", padRightANSI("ab", 4))
	assert.Equal(t, "abcdef", padRightANSI("abcdef", 4))
	assert.Equal(t, "", padRightANSI("ab", 0))
}

func TestRenderDiffLineKeepsText(t *testing.T) {
	line := renderDiffLine([]replace.DiffSpan{
		{Op: replace.DiffEqual, Text: "a "},
		{Op: replace.DiffDelete, Text: "foo"},
		{Op: replace.DiffInsert, Text: "bar"},
		{Op: replace.DiffEqual, Text: "\nb"},
	}, 80)
	assert.Contains(t, line, "a ")
	assert.Contains(t, line, "foo")
	assert.Contains(t, line, "bar")
	assert.Empty(t, renderDiffLine(nil, 80))
}
