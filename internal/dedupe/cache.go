// Package dedupe remembers recently answered job ids so redelivered Kafka
// messages are not verified twice. Only ids are stored, never job text.
package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	id string
	ts time.Time
}

// Cache is a bounded, ttl-limited set of job ids.
type Cache struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		seen:     make(map[string]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IsSeen reports whether id was marked inside the ttl window.
func (c *Cache) IsSeen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.seen[id]
	return ok && c.now().Sub(ts) <= c.ttl
}

// MarkSeen records that id has been answered.
func (c *Cache) MarkSeen(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.seen[id] = now
	c.order = append(c.order, entry{id: id, ts: now})
	c.compact(now)
}

// Len returns the number of tracked ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.seen) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// a re-marked id has a newer entry further down the queue
		if ts, ok := c.seen[oldest.id]; ok && ts.Equal(oldest.ts) {
			delete(c.seen, oldest.id)
		}
	}
}
