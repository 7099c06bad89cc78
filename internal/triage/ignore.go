package triage

import (
	"strings"
	"sync"
)

// IgnoreSet is the negative cache of fingerprints. It outlives searches and
// only grows.
type IgnoreSet struct {
	mu    sync.RWMutex
	set   map[string]struct{}
	order []string
}

func NewIgnoreSet() *IgnoreSet {
	return &IgnoreSet{set: make(map[string]struct{})}
}

// Add reports whether fingerprint was new.
func (s *IgnoreSet) Add(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[fingerprint]; ok {
		return false
	}
	s.set[fingerprint] = struct{}{}
	s.order = append(s.order, fingerprint)
	return true
}

func (s *IgnoreSet) Contains(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[fingerprint]
	return ok
}

func (s *IgnoreSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns fingerprints in insertion order.
func (s *IgnoreSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// MatchesFilter is the secondary filter predicate: substr appears in the
// fingerprint or in the first occurrence's display context.
func MatchesFilter(g *Group, substr string) bool {
	if substr == "" || len(g.Occurrences) == 0 {
		return false
	}
	return strings.Contains(g.Fingerprint, substr) || strings.Contains(g.First().Context, substr)
}
