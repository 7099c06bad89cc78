package triage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"kwsweep/internal/search"
)

type Options struct {
	Capacity int
	Logger   *slog.Logger
	Events   EventSink
}

// Session is the state of one triage pass: the groups of one search, their
// render queue and the shared ignore set.
type Session struct {
	ID      string
	Keyword string

	mu     sync.Mutex
	queue  *Queue
	groups []*Group
	byID   map[int]*Group
	ignore *IgnoreSet
	events EventSink
	log    *slog.Logger
}

// Start searches content and builds a session from the result. Progress is
// forwarded as EventProgress while the search runs. An empty result is a
// session that is already complete.
func Start(ctx context.Context, coord search.Coordinator, s *search.Session, content string, ignore *IgnoreSet, opts Options) (*Session, error) {
	forward := coord.Progress
	coord.Progress = func(p search.Progress) {
		if forward != nil {
			forward(p)
		}
		opts.Events.emit(Event{Kind: EventProgress, Percent: p.Percent, Found: p.Found})
	}

	occs, err := coord.Search(ctx, s, content)
	if err != nil {
		opts.Events.emit(Event{Kind: EventError, Message: err.Error()})
		return nil, err
	}

	sess := NewSession(s.ID, s.Keyword, occs, ignore, opts)
	sess.announce()
	return sess, nil
}

func NewSession(id string, keyword string, occs []search.Occurrence, ignore *IgnoreSet, opts Options) *Session {
	if ignore == nil {
		ignore = NewIgnoreSet()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	groups := GroupOccurrences(occs, ignore)
	byID := make(map[int]*Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return &Session{
		ID:      id,
		Keyword: keyword,
		queue:   NewQueue(groups, opts.Capacity),
		groups:  groups,
		byID:    byID,
		ignore:  ignore,
		events:  opts.Events,
		log:     log.With("session", id),
	}
}

func (s *Session) announce() {
	s.mu.Lock()
	events := []Event{
		{Kind: EventGroupsChanged},
		{Kind: EventQueueDepth, Depth: s.queue.PendingDepth()},
	}
	if s.queue.markComplete() {
		events = append(events, Event{Kind: EventComplete, Message: "no matches", Passive: true})
	}
	total := s.queue.Total()
	s.mu.Unlock()

	s.log.Debug("triage started", "groups", total)
	s.events.emit(events...)
}

// Ignore resolves g as ignored and remembers its fingerprint for later
// searches.
func (s *Session) Ignore(g *Group) (Transition, error) {
	s.mu.Lock()
	tr, err := s.queue.Resolve(g, Ignored)
	if err != nil {
		s.mu.Unlock()
		return tr, err
	}
	s.ignore.Add(g.Fingerprint)
	events := s.afterResolve(tr, false)
	s.mu.Unlock()

	s.log.Debug("group ignored", "group", g.ID, "fingerprint", g.Fingerprint)
	s.events.emit(events...)
	return tr, nil
}

func (s *Session) MarkReplaced(g *Group) (Transition, error) {
	s.mu.Lock()
	tr, err := s.queue.Resolve(g, Replaced)
	if err != nil {
		s.mu.Unlock()
		return tr, err
	}
	events := s.afterResolve(tr, false)
	s.mu.Unlock()

	s.events.emit(events...)
	return tr, nil
}

// SecondaryFilter ignores every pending group matching substr, displayed or
// queued, and returns how many matched. Queued matches are never displayed.
// A completion caused here is passive.
func (s *Session) SecondaryFilter(substr string) int {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return 0
	}

	s.mu.Lock()
	candidates := append(s.queue.Displayed(), s.queue.Pending()...)
	matched := 0
	completed := false
	for _, g := range candidates {
		if !g.IsPending() || !MatchesFilter(g, substr) {
			continue
		}
		tr, err := s.queue.Resolve(g, Ignored)
		if err != nil {
			continue
		}
		s.ignore.Add(g.Fingerprint)
		matched++
		completed = completed || tr.Completed
	}

	var events []Event
	if matched > 0 {
		events = s.afterResolve(Transition{Completed: completed}, true)
		events = append([]Event{{Kind: EventNotice, Message: fmt.Sprintf("ignored %d group(s) matching %q", matched, substr)}}, events...)
	}
	s.mu.Unlock()

	s.log.Debug("secondary filter", "substr", substr, "matched", matched)
	s.events.emit(events...)
	return matched
}

// PreviewFilter counts the pending groups SecondaryFilter would ignore.
func (s *Session) PreviewFilter(substr string) int {
	substr = strings.TrimSpace(substr)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.groups {
		if g.IsPending() && MatchesFilter(g, substr) {
			n++
		}
	}
	return n
}

func (s *Session) afterResolve(tr Transition, passive bool) []Event {
	events := []Event{
		{Kind: EventGroupsChanged},
		{Kind: EventQueueDepth, Depth: s.queue.PendingDepth()},
	}
	if tr.Completed {
		events = append(events, Event{Kind: EventComplete, Passive: passive})
	}
	return events
}

func (s *Session) Lookup(id int) (*Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	return g, ok
}

// Groups returns every group of the session in discovery order, resolved
// ones included.
func (s *Session) Groups() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Group(nil), s.groups...)
}

func (s *Session) Displayed() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Displayed()
}

func (s *Session) Sequence(g *Group) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Sequence(g)
}

type Stats struct {
	Total     int
	Replaced  int
	Ignored   int
	Remaining int
	Depth     int
	Complete  bool
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Total:     s.queue.Total(),
		Replaced:  s.queue.Replaced(),
		Ignored:   s.queue.Ignored(),
		Remaining: s.queue.Remaining(),
		Depth:     s.queue.PendingDepth(),
		Complete:  s.queue.IsComplete(),
	}
}

func (s *Session) IgnoreSet() *IgnoreSet {
	return s.ignore
}
