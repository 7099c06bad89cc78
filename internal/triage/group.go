package triage

import "kwsweep/internal/search"

type Status uint8

const (
	Pending Status = iota
	Replaced
	Ignored
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Replaced:
		return "replaced"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Group collects the occurrences sharing one fingerprint. Status only ever
// leaves Pending once.
type Group struct {
	ID          int
	Fingerprint string
	Occurrences []search.Occurrence

	status Status
}

func (g *Group) Status() Status {
	return g.status
}

func (g *Group) IsPending() bool {
	return g.status == Pending
}

// First returns the earliest occurrence; groups are never empty.
func (g *Group) First() search.Occurrence {
	return g.Occurrences[0]
}

// GroupOccurrences buckets position-ordered occurrences by fingerprint in
// first-seen order, skipping fingerprints present in ignore. IDs are 1-based.
func GroupOccurrences(occs []search.Occurrence, ignore *IgnoreSet) []*Group {
	index := make(map[string]*Group)
	var groups []*Group
	for _, occ := range occs {
		if ignore != nil && ignore.Contains(occ.Field) {
			continue
		}
		g, ok := index[occ.Field]
		if !ok {
			g = &Group{ID: len(groups) + 1, Fingerprint: occ.Field}
			index[occ.Field] = g
			groups = append(groups, g)
		}
		g.Occurrences = append(g.Occurrences, occ)
	}
	return groups
}
