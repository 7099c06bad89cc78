package search

import (
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session scopes a single search invocation. Abort is the only way to stop
// it; the coordinator polls Aborted at every yield point.
type Session struct {
	ID             string
	Keyword        string
	SnapshotLength int
	WorkerCount    int

	aborted atomic.Bool
}

func NewSession(keyword string, content string) (*Session, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyBuffer
	}
	return &Session{
		ID:             uuid.NewString(),
		Keyword:        keyword,
		SnapshotLength: len(content),
		WorkerCount:    WorkerCount(len(content)),
	}, nil
}

func (s *Session) Abort() {
	s.aborted.Store(true)
}

func (s *Session) Aborted() bool {
	return s.aborted.Load()
}
