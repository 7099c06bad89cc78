package history

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// QuickFields is the list of saved replacement texts offered next to the
// replace input.
type QuickFields struct {
	mu     sync.Mutex
	fields []string
}

// Add stores the trimmed value unless it is empty or already present.
func (q *QuickFields) Add(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, f := range q.fields {
		if f == value {
			return false
		}
	}
	q.fields = append(q.fields, value)
	return true
}

func (q *QuickFields) Remove(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= len(q.fields) {
		return false
	}
	q.fields = append(q.fields[:index], q.fields[index+1:]...)
	return true
}

func (q *QuickFields) List() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.fields...)
}

// Age renders t relative to now the way the history panel shows it.
func Age(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return t.Format("Jan 2 15:04")
	}
}
