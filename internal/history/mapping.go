package history

import (
	"sync"
	"time"
)

const DefaultCapacity = 20

// Record is one search-text to replacement-text pair with its running count.
type Record struct {
	From      string    `yaml:"from"`
	To        string    `yaml:"to"`
	Count     int       `yaml:"count"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Mapping is a bounded most-recently-used ledger of substitutions. Index 0
// is the most recently touched record.
type Mapping struct {
	mu       sync.Mutex
	capacity int
	records  []Record
	now      func() time.Time
}

func NewMapping(capacity int) *Mapping {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Mapping{capacity: capacity, now: time.Now}
}

func (m *Mapping) Record(from string, to string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{From: from, To: to, Count: count, Timestamp: m.now()}
	for i, existing := range m.records {
		if existing.From == from && existing.To == to {
			rec.Count += existing.Count
			copy(m.records[1:i+1], m.records[:i])
			m.records[0] = rec
			return
		}
	}

	m.records = append(m.records, Record{})
	copy(m.records[1:], m.records)
	m.records[0] = rec
	if len(m.records) > m.capacity {
		m.records = m.records[:m.capacity]
	}
}

func (m *Mapping) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

func (m *Mapping) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
