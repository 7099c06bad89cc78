package triage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwsweep/internal/search"
)

type recorder struct {
	events []Event
}

func (r *recorder) sink() EventSink {
	return func(ev Event) { r.events = append(r.events, ev) }
}

func (r *recorder) kinds(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// paddedLines keeps every line's context window clear of its neighbours.
func paddedLines(lines ...string) string {
	pad := strings.Repeat(".", search.ContextRadius+10)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l + pad + "\n")
	}
	return b.String()
}

func startSession(t *testing.T, keyword string, content string, ignore *IgnoreSet, opts Options) *Session {
	t.Helper()
	s, err := search.NewSession(keyword, content)
	require.NoError(t, err)
	sess, err := Start(context.Background(), search.Coordinator{}, s, content, ignore, opts)
	require.NoError(t, err)
	return sess
}

func TestGroupingSharedFingerprintCompletesOnIgnore(t *testing.T) {
	rec := &recorder{}
	ignore := NewIgnoreSet()
	sess := startSession(t, "foo", "foo bar foo baz foo", ignore, Options{Capacity: 2, Events: rec.sink()})

	groups := sess.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, "foo b", groups[0].Fingerprint)
	assert.Equal(t, "r foo b", groups[1].Fingerprint)
	assert.Equal(t, "z foo", groups[2].Fingerprint)

	rec = &recorder{}
	sess = startSession(t, "foo", "xx foo xx foo xx foo xx", ignore, Options{Capacity: 2, Events: rec.sink()})
	groups = sess.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Occurrences, 3)
	assert.Equal(t, "x foo x", groups[0].Fingerprint)

	_, err := sess.Ignore(groups[0])
	require.NoError(t, err)
	st := sess.Stats()
	assert.True(t, st.Complete)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Ignored)
	assert.Len(t, rec.kinds(EventComplete), 1)
}

func TestSecondaryFilterIgnoresDisplayedAndQueued(t *testing.T) {
	rec := &recorder{}
	ignore := NewIgnoreSet()
	content := paddedLines("xfoo1", "xfoo2", "yfoo3", "xfoo4", "yfoo5")
	sess := startSession(t, "foo", content, ignore, Options{Capacity: 2, Events: rec.sink()})

	require.Len(t, sess.Groups(), 5)
	assert.Equal(t, 3, sess.PreviewFilter("xfoo"))

	matched := sess.SecondaryFilter("xfoo")
	assert.Equal(t, 3, matched)

	st := sess.Stats()
	assert.Equal(t, 3, st.Ignored)
	assert.Equal(t, 2, st.Remaining)
	assert.Equal(t, 0, st.Depth)
	assert.False(t, st.Complete)
	assert.Equal(t, 3, ignore.Len())

	displayed := sess.Displayed()
	require.Len(t, displayed, 2)
	assert.Contains(t, displayed[0].Fingerprint, "yfoo3")
	assert.Contains(t, displayed[1].Fingerprint, "yfoo5")
	assert.Equal(t, 0, sess.PreviewFilter("xfoo"))

	require.NotEmpty(t, rec.kinds(EventNotice))
	assert.Empty(t, rec.kinds(EventComplete))

	assert.Equal(t, 2, sess.SecondaryFilter("foo"))
	complete := rec.kinds(EventComplete)
	require.Len(t, complete, 1)
	assert.True(t, complete[0].Passive)
}

func TestSecondaryFilterTrimsText(t *testing.T) {
	rec := &recorder{}
	content := paddedLines("xfoo1", "yfoo2", "xfoo3")
	sess := startSession(t, "foo", content, NewIgnoreSet(), Options{Events: rec.sink()})

	assert.Equal(t, 2, sess.PreviewFilter(" xfoo\t"))
	assert.Equal(t, 0, sess.SecondaryFilter("   "))
	assert.Equal(t, 0, sess.Stats().Ignored)

	assert.Equal(t, 2, sess.SecondaryFilter("xfoo "))
	notices := rec.kinds(EventNotice)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1].Message, `"xfoo"`)
}

func TestIgnoreExcludesFingerprintFromLaterSearches(t *testing.T) {
	ignore := NewIgnoreSet()
	content := "a foo b\nc foo d\na foo b\n"
	sess := startSession(t, "foo", content, ignore, Options{})

	groups := sess.Groups()
	require.Len(t, groups, 2)
	require.Len(t, groups[0].Occurrences, 2)

	rec := &recorder{}
	sess.events = rec.sink()
	_, err := sess.Ignore(groups[0])
	require.NoError(t, err)
	assert.True(t, ignore.Contains("a foo b"))

	again := startSession(t, "foo", content, ignore, Options{})
	regrouped := again.Groups()
	require.Len(t, regrouped, 1)
	assert.Equal(t, "c foo d", regrouped[0].Fingerprint)
	assert.Equal(t, 1, regrouped[0].ID)
}

func TestMarkReplacedCompletesActively(t *testing.T) {
	rec := &recorder{}
	sess := startSession(t, "foo", "one foo", nil, Options{Events: rec.sink()})
	g, ok := sess.Lookup(1)
	require.True(t, ok)

	_, err := sess.MarkReplaced(g)
	require.NoError(t, err)

	complete := rec.kinds(EventComplete)
	require.Len(t, complete, 1)
	assert.False(t, complete[0].Passive)

	_, err = sess.MarkReplaced(g)
	assert.ErrorIs(t, err, ErrResolved)
	assert.Len(t, rec.kinds(EventComplete), 1)
}

func TestStartWithoutMatchesIsComplete(t *testing.T) {
	rec := &recorder{}
	sess := startSession(t, "zzz", "nothing here", nil, Options{Events: rec.sink()})

	assert.True(t, sess.Stats().Complete)
	complete := rec.kinds(EventComplete)
	require.Len(t, complete, 1)
	assert.Equal(t, "no matches", complete[0].Message)
	assert.NotEmpty(t, rec.kinds(EventProgress))
}

func TestStartReportsAbort(t *testing.T) {
	rec := &recorder{}
	s, err := search.NewSession("foo", "foo")
	require.NoError(t, err)
	s.Abort()

	_, err = Start(context.Background(), search.Coordinator{}, s, "foo", nil, Options{Events: rec.sink()})
	assert.ErrorIs(t, err, search.ErrAborted)
	assert.Len(t, rec.kinds(EventError), 1)
}

func TestGroupOccurrencesIsIdempotent(t *testing.T) {
	occs := []search.Occurrence{
		{Position: 0, Field: "a"},
		{Position: 5, Field: "b"},
		{Position: 9, Field: "a"},
	}
	ignore := NewIgnoreSet()
	first := GroupOccurrences(occs, ignore)
	second := GroupOccurrences(occs, ignore)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, []int{0, 9}, []int{first[0].Occurrences[0].Position, first[0].Occurrences[1].Position})

	assert.True(t, ignore.Add("b"))
	assert.False(t, ignore.Add("b"))
	filtered := GroupOccurrences(occs, ignore)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].Fingerprint)
	assert.Equal(t, []string{"b"}, ignore.List())
}

func TestMatchesFilter(t *testing.T) {
	g := &Group{Fingerprint: "a foo b", Occurrences: []search.Occurrence{{Context: "long a foo b context"}}}
	assert.True(t, MatchesFilter(g, "foo b"))
	assert.True(t, MatchesFilter(g, "context"))
	assert.False(t, MatchesFilter(g, "absent"))
	assert.False(t, MatchesFilter(g, ""))
}
