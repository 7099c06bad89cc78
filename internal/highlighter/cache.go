package highlighter

import (
	"container/list"
	"sync"
)

type cacheEntry struct {
	key   Request
	spans []Span
}

type spanLRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[Request]*list.Element
}

func newSpanLRU(capacity int) *spanLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &spanLRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[Request]*list.Element, capacity),
	}
}

func (c *spanLRU) Get(key Request) ([]Span, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(cacheEntry).spans, true
}

func (c *spanLRU) Set(key Request, spans []Span) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = cacheEntry{key: key, spans: spans}
		c.ll.MoveToFront(elem)
		return
	}

	c.items[key] = c.ll.PushFront(cacheEntry{key: key, spans: spans})
	if c.ll.Len() <= c.capacity {
		return
	}

	back := c.ll.Back()
	delete(c.items, back.Value.(cacheEntry).key)
	c.ll.Remove(back)
}

func (c *spanLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
