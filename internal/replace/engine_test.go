package replace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwsweep/internal/history"
	"kwsweep/internal/search"
	"kwsweep/internal/textbuf"
	"kwsweep/internal/triage"
)

func newTriage(t *testing.T, buf *textbuf.Buffer, keyword string) *triage.Session {
	t.Helper()
	s, err := search.NewSession(keyword, buf.Content())
	require.NoError(t, err)
	sess, err := triage.Start(context.Background(), search.Coordinator{}, s, buf.Content(), triage.NewIgnoreSet(), triage.Options{})
	require.NoError(t, err)
	return sess
}

func TestReplaceGroupCommitsOneEdit(t *testing.T) {
	buf := textbuf.New("a foo b\nc foo d\na foo b\n")
	eng := NewEngine(buf, history.NewMapping(0), nil)
	sess := newTriage(t, buf, "foo")

	g, ok := sess.Lookup(1)
	require.True(t, ok)
	require.Len(t, g.Occurrences, 2)

	out, err := eng.ReplaceGroup(sess, g, "bar")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Replaced)
	assert.Equal(t, 0, out.Stale)
	assert.Equal(t, "a bar b\nc foo d\na bar b\n", buf.Content())
	assert.Equal(t, triage.Replaced, g.Status())

	require.NoError(t, buf.Undo())
	assert.Equal(t, "a foo b\nc foo d\na foo b\n", buf.Content())
	assert.ErrorIs(t, buf.Undo(), textbuf.ErrNothingToUndo)

	recs := eng.History().Records()
	require.Len(t, recs, 1)
	assert.Equal(t, history.Record{From: "foo", To: "bar", Count: 2, Timestamp: recs[0].Timestamp}, recs[0])
}

func TestReplaceGroupIsNoOpOnResolvedGroups(t *testing.T) {
	buf := textbuf.New("x foo y\nz foo w\n")
	eng := NewEngine(buf, nil, nil)
	sess := newTriage(t, buf, "foo")

	first, _ := sess.Lookup(1)
	second, _ := sess.Lookup(2)
	_, err := sess.Ignore(second)
	require.NoError(t, err)

	_, err = eng.ReplaceGroup(sess, first, "bar")
	require.NoError(t, err)
	content := buf.Content()

	for _, g := range []*triage.Group{first, second} {
		out, err := eng.ReplaceGroup(sess, g, "qux")
		require.NoError(t, err)
		assert.Equal(t, Outcome{}, out)
	}
	assert.Equal(t, content, buf.Content())
	assert.Equal(t, triage.Ignored, second.Status())
	assert.Equal(t, 1, eng.History().Len())
}

func TestReplaceGroupSkipsStaleOccurrences(t *testing.T) {
	buf := textbuf.New("a foo b\na foo b\n")
	eng := NewEngine(buf, nil, nil)
	sess := newTriage(t, buf, "foo")
	g, _ := sess.Lookup(1)

	require.NoError(t, buf.ApplyAtomicEdit("a fox b\na foo b\n"))
	out, err := eng.ReplaceGroup(sess, g, "bar")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Replaced)
	assert.Equal(t, 1, out.Stale)
	assert.Equal(t, "a fox b\na bar b\n", buf.Content())
	assert.Equal(t, 1, eng.History().Records()[0].Count)
}

func TestReplaceGroupAllStaleLeavesGroupPending(t *testing.T) {
	buf := textbuf.New("a foo b\n")
	eng := NewEngine(buf, nil, nil)
	sess := newTriage(t, buf, "foo")
	g, _ := sess.Lookup(1)

	require.NoError(t, buf.ApplyAtomicEdit("nothing left\n"))
	out, err := eng.ReplaceGroup(sess, g, "bar")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Replaced)
	assert.Equal(t, 1, out.Stale)
	assert.True(t, g.IsPending())
	assert.Equal(t, 0, eng.History().Len())
	assert.Equal(t, "nothing left\n", buf.Content())
}

func TestReplaceAllNeedsConfirmation(t *testing.T) {
	buf := textbuf.New("ababab")
	eng := NewEngine(buf, nil, nil)

	plan, err := eng.PrepareReplaceAll(" aba ", "X")
	require.NoError(t, err)
	assert.Equal(t, "aba", plan.Keyword)
	assert.Equal(t, 2, plan.Count)

	_, err = eng.ApplyReplaceAll(plan)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, "ababab", buf.Content())

	n, err := eng.ApplyReplaceAll(plan.Confirm())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Xbab", buf.Content())
	assert.Equal(t, 2, eng.History().Records()[0].Count)
}

func TestReplaceAllValidation(t *testing.T) {
	eng := NewEngine(textbuf.New("text"), nil, nil)

	_, err := eng.PrepareReplaceAll("  ", "x")
	assert.ErrorIs(t, err, search.ErrEmptyKeyword)

	plan, err := eng.PrepareReplaceAll("zzz", "x")
	require.NoError(t, err)
	_, err = eng.ApplyReplaceAll(plan.Confirm())
	assert.ErrorIs(t, err, ErrNoMatches)

	_, err = NewEngine(textbuf.New(" \n"), nil, nil).PrepareReplaceAll("a", "b")
	assert.ErrorIs(t, err, search.ErrEmptyBuffer)
}

func TestReplaceAllRoundTrip(t *testing.T) {
	buf := textbuf.New("cat and cat\ncatalog of cats\n")
	eng := NewEngine(buf, nil, nil)

	plan, err := eng.PrepareReplaceAll("cat", "dog")
	require.NoError(t, err)
	n, err := eng.ApplyReplaceAll(plan.Confirm())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	s, err := search.NewSession("dog", buf.Content())
	require.NoError(t, err)
	var c search.Coordinator
	occ, err := c.Search(context.Background(), s, buf.Content())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(occ), n)
}

func TestPreviewGroup(t *testing.T) {
	buf := textbuf.New("say foo here")
	sess := newTriage(t, buf, "foo")
	g, _ := sess.Lookup(1)

	spans := PreviewGroup(g, "foo", "bar")
	var before, after string
	for _, sp := range spans {
		if sp.Op != DiffInsert {
			before += sp.Text
		}
		if sp.Op != DiffDelete {
			after += sp.Text
		}
	}
	assert.Equal(t, "say foo here", before)
	assert.Equal(t, "say bar here", after)
	assert.Nil(t, PreviewGroup(nil, "foo", "bar"))
}
