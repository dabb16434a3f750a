package schedule

import (
	"container/list"
	"sync"
	"time"
)

// =============================================================================
// VIEW CACHE - Cached month payloads with commit-driven invalidation
// =============================================================================

// ViewCache holds assembled month payloads so repeated grid loads skip the
// store. Any committed write flushes it; a stale entry may otherwise serve
// until its TTL expires. LRU eviction bounds memory.
type ViewCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type viewEntry struct {
	key       string
	data      *MonthData
	expiresAt time.Time
}

func NewViewCache(maxSize int, ttl time.Duration) *ViewCache {
	return &ViewCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cached payload for a month key, if present and fresh.
func (c *ViewCache) Get(key string) (*MonthData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*viewEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return entry.data, true
}

// Put stores a payload under a month key.
func (c *ViewCache) Put(key string, data *MonthData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*viewEntry)
		entry.data = data
		entry.expiresAt = time.Now().Add(c.ttl)
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&viewEntry{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.items[key] = elem

	for c.lru.Len() > c.maxSize {
		c.removeElement(c.lru.Back())
	}
}

// Invalidate drops every cached month. Called after each committed write
// so subsequent fresh loads see the change.
func (c *ViewCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *ViewCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*viewEntry)
	delete(c.items, entry.key)
	c.lru.Remove(elem)
}
