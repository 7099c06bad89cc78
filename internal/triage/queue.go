package triage

import "errors"

const DefaultCapacity = 200

var (
	ErrResolved       = errors.New("group already resolved")
	ErrUnknownGroup   = errors.New("group not in queue")
	ErrInvalidOutcome = errors.New("outcome must be replaced or ignored")
)

// Transition describes what a Resolve changed besides the resolved group.
type Transition struct {
	Admitted  *Group
	Completed bool
}

// Queue keeps at most capacity groups displayed and the rest in a FIFO.
// Resolved groups leave both lists for good and only count towards
// completion.
type Queue struct {
	capacity  int
	displayed []*Group
	pending   []*Group

	total    int
	replaced int
	ignored  int
	notified bool
}

func NewQueue(groups []*Group, capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{capacity: capacity, total: len(groups)}
	n := min(capacity, len(groups))
	q.displayed = append(make([]*Group, 0, n), groups[:n]...)
	q.pending = append([]*Group(nil), groups[n:]...)
	return q
}

func (q *Queue) Resolve(g *Group, outcome Status) (Transition, error) {
	if outcome != Replaced && outcome != Ignored {
		return Transition{}, ErrInvalidOutcome
	}
	if g == nil {
		return Transition{}, ErrUnknownGroup
	}
	if !g.IsPending() {
		return Transition{}, ErrResolved
	}

	wasDisplayed := false
	if i := indexOf(q.displayed, g); i >= 0 {
		q.displayed = append(q.displayed[:i], q.displayed[i+1:]...)
		wasDisplayed = true
	} else if i := indexOf(q.pending, g); i >= 0 {
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
	} else {
		return Transition{}, ErrUnknownGroup
	}

	g.status = outcome
	if outcome == Replaced {
		q.replaced++
	} else {
		q.ignored++
	}

	var tr Transition
	if wasDisplayed && len(q.pending) > 0 && len(q.displayed) < q.capacity {
		head := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.displayed = append(q.displayed, head)
		tr.Admitted = head
	}
	tr.Completed = q.markComplete()
	return tr, nil
}

// markComplete reports true exactly once, the first time every group is
// resolved.
func (q *Queue) markComplete() bool {
	if q.notified || !q.IsComplete() {
		return false
	}
	q.notified = true
	return true
}

func (q *Queue) IsComplete() bool {
	return q.replaced+q.ignored == q.total
}

// Sequence is the 1-based position of g among displayed groups, 0 when g is
// not displayed.
func (q *Queue) Sequence(g *Group) int {
	return indexOf(q.displayed, g) + 1
}

func (q *Queue) Displayed() []*Group {
	return append([]*Group(nil), q.displayed...)
}

func (q *Queue) Pending() []*Group {
	return append([]*Group(nil), q.pending...)
}

func (q *Queue) Capacity() int     { return q.capacity }
func (q *Queue) Total() int        { return q.total }
func (q *Queue) Replaced() int     { return q.replaced }
func (q *Queue) Ignored() int      { return q.ignored }
func (q *Queue) PendingDepth() int { return len(q.pending) }

func (q *Queue) Remaining() int {
	return q.total - q.replaced - q.ignored
}

func indexOf(groups []*Group, g *Group) int {
	for i, candidate := range groups {
		if candidate == g {
			return i
		}
	}
	return -1
}
