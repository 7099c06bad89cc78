package replace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"kwsweep/internal/history"
	"kwsweep/internal/search"
	"kwsweep/internal/triage"
)

var (
	ErrNotConfirmed = errors.New("replace-all not confirmed")
	ErrNoMatches    = errors.New("no matches to replace")
)

// Buffer is the document being edited. ApplyAtomicEdit swaps the whole
// content as a single undoable edit.
type Buffer interface {
	Content() string
	ApplyAtomicEdit(content string) error
}

type Engine struct {
	buf     Buffer
	history *history.Mapping
	log     *slog.Logger
}

func NewEngine(buf Buffer, hist *history.Mapping, log *slog.Logger) *Engine {
	if hist == nil {
		hist = history.NewMapping(history.DefaultCapacity)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{buf: buf, history: hist, log: log}
}

func (e *Engine) History() *history.Mapping {
	return e.history
}

type Outcome struct {
	Replaced   int
	Stale      int
	Transition triage.Transition
}

// ReplaceGroup substitutes every still-valid occurrence of g. Resolved
// groups are left alone. When nothing validates the buffer is not touched
// and g stays pending.
func (e *Engine) ReplaceGroup(sess *triage.Session, g *triage.Group, replacement string) (Outcome, error) {
	if g == nil || !g.IsPending() {
		return Outcome{}, nil
	}

	positions := make([]int, len(g.Occurrences))
	for i, occ := range g.Occurrences {
		positions[i] = occ.Position
	}

	content := e.buf.Content()
	next, replaced, stale := splice(content, sess.Keyword, replacement, positions)
	out := Outcome{Replaced: replaced, Stale: stale}
	if replaced == 0 {
		e.log.Debug("group stale", "group", g.ID, "stale", stale)
		return out, nil
	}

	if err := e.buf.ApplyAtomicEdit(next); err != nil {
		return Outcome{}, fmt.Errorf("apply edit for group %d: %w", g.ID, err)
	}
	e.history.Record(sess.Keyword, replacement, replaced)

	tr, err := sess.MarkReplaced(g)
	if err != nil {
		return out, err
	}
	out.Transition = tr

	e.log.Info("group replaced", "group", g.ID, "replaced", replaced, "stale", stale)
	return out, nil
}

// Plan is a counted replace-all waiting for confirmation.
type Plan struct {
	Keyword     string
	Replacement string
	Count       int

	confirmed bool
}

func (p Plan) Confirm() Plan {
	p.confirmed = true
	return p
}

func (p Plan) Confirmed() bool {
	return p.confirmed
}

// PrepareReplaceAll counts overlapping matches of keyword in the current
// content. Nothing is changed until the confirmed plan is applied.
func (e *Engine) PrepareReplaceAll(keyword string, replacement string) (Plan, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Plan{}, search.ErrEmptyKeyword
	}
	content := e.buf.Content()
	if strings.TrimSpace(content) == "" {
		return Plan{}, search.ErrEmptyBuffer
	}
	return Plan{
		Keyword:     keyword,
		Replacement: replacement,
		Count:       search.CountOverlapping(content, keyword),
	}, nil
}

// ApplyReplaceAll substitutes every non-overlapping match left to right and
// records the counted total in the history.
func (e *Engine) ApplyReplaceAll(p Plan) (int, error) {
	if !p.confirmed {
		return 0, ErrNotConfirmed
	}
	if p.Count == 0 {
		return 0, ErrNoMatches
	}

	next := strings.ReplaceAll(e.buf.Content(), p.Keyword, p.Replacement)
	if err := e.buf.ApplyAtomicEdit(next); err != nil {
		return 0, fmt.Errorf("apply replace-all: %w", err)
	}
	e.history.Record(p.Keyword, p.Replacement, p.Count)

	e.log.Info("replace all", "keyword", p.Keyword, "count", p.Count)
	return p.Count, nil
}
