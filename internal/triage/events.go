package triage

type EventKind uint8

const (
	EventProgress EventKind = iota
	EventQueueDepth
	EventGroupsChanged
	EventComplete
	EventNotice
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventQueueDepth:
		return "queue-depth"
	case EventGroupsChanged:
		return "groups-changed"
	case EventComplete:
		return "complete"
	case EventNotice:
		return "notice"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is what the core tells its host. Passive marks a completion that
// must not close the results view.
type Event struct {
	Kind    EventKind
	Percent int
	Found   int
	Depth   int
	Message string
	Passive bool
}

type EventSink func(Event)

func (s EventSink) emit(events ...Event) {
	if s == nil {
		return
	}
	for _, ev := range events {
		s(ev)
	}
}
