package highlighter

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "Go", DetectLanguage("/tmp/main.go", ""))
	assert.Equal(t, PlainLanguage, DetectLanguage("notes.unknownext", ""))
}

func TestHighlightCoversWholeText(t *testing.T) {
	text := `x := "héllo" // note`
	spans := Highlight(Request{Lang: "Go", Text: text})
	require.NotEmpty(t, spans)

	cursor := 0
	for _, sp := range spans {
		assert.Equal(t, cursor, sp.Start)
		assert.Greater(t, sp.End, sp.Start)
		cursor = sp.End
	}
	assert.Equal(t, utf8.RuneCountInString(text), cursor)

	cats := map[TokenCategory]bool{}
	for _, sp := range spans {
		cats[sp.Cat] = true
	}
	assert.True(t, cats[TokenString])
	assert.True(t, cats[TokenComment])
}

func TestHighlightPlainFallback(t *testing.T) {
	assert.Equal(t, []Span{{Start: 0, End: 5, Cat: TokenPlain}}, Highlight(Request{Lang: PlainLanguage, Text: "hello"}))
	assert.Equal(t, []Span{{Start: 0, End: 2, Cat: TokenPlain}}, Highlight(Request{Lang: "no such lexer", Text: "éa"}))
	assert.Nil(t, Highlight(Request{Lang: "Go"}))
}

func TestQueueFillsCache(t *testing.T) {
	h := New(Config{CacheSize: 4, Workers: 2})
	req := Request{Lang: "Go", Text: "func f() {}"}

	_, ok := h.Lookup(req)
	assert.False(t, ok)
	h.Queue(req)

	assert.Eventually(t, func() bool {
		_, ok := h.Lookup(req)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestSpanLRUEvictsOldest(t *testing.T) {
	c := newSpanLRU(2)
	a := Request{Text: "a"}
	b := Request{Text: "b"}
	d := Request{Text: "d"}

	c.Set(a, plainSpans("a"))
	c.Set(b, plainSpans("b"))
	_, ok := c.Get(a)
	require.True(t, ok)
	c.Set(d, plainSpans("d"))

	_, ok = c.Get(b)
	assert.False(t, ok)
	_, ok = c.Get(a)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestNormalizeSpansFillsGapsAndMerges(t *testing.T) {
	got := normalizeSpans([]Span{
		{Start: 2, End: 4, Cat: TokenKeyword},
		{Start: 4, End: 6, Cat: TokenKeyword},
		{Start: 8, End: 20, Cat: TokenString},
	}, 10)
	assert.Equal(t, []Span{
		{Start: 0, End: 2, Cat: TokenPlain},
		{Start: 2, End: 6, Cat: TokenKeyword},
		{Start: 6, End: 8, Cat: TokenPlain},
		{Start: 8, End: 10, Cat: TokenString},
	}, got)
}
