// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package cache

import (
	"sync"
	"time"
)

// EvictReason says why an entry left the cache.
type EvictReason int

const (
	// EvictExpired means the TTL elapsed.
	EvictExpired EvictReason = iota
	// EvictCapacity means the least recently used entry made room.
	EvictCapacity
	// EvictRemoved means Remove was called.
	EvictRemoved
)

func (r EvictReason) String() string {
	switch r {
	case EvictExpired:
		return "expired"
	case EvictCapacity:
		return "capacity"
	default:
		return "removed"
	}
}

type lruEntry[V any] struct {
	key       string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRU is a capacity-bounded least-recently-used cache with TTL.
//
// Lookups, inserts and removals are O(1). Expired entries are dropped lazily
// on access and in bulk by CleanupExpired.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	sliding  bool
	onEvict  func(key string, value V, reason EvictReason)
	now      func() time.Time

	items map[string]*lruEntry[V]
	// head.next is most recent, tail.prev least recent.
	head *lruEntry[V]
	tail *lruEntry[V]

	hits   int64
	misses int64
}

// Option configures an LRU.
type Option[V any] func(*LRU[V])

// WithSlidingExpiration resets an entry's TTL every time it is read, giving
// idle-timeout semantics.
func WithSlidingExpiration[V any]() Option[V] {
	return func(c *LRU[V]) { c.sliding = true }
}

// WithEvictCallback is called (outside the lock) for every entry that leaves
// the cache.
func WithEvictCallback[V any](fn func(key string, value V, reason EvictReason)) Option[V] {
	return func(c *LRU[V]) { c.onEvict = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *LRU[V]) { c.now = now }
}

// NewLRU creates a cache. Non-positive capacity defaults to 10000 and
// non-positive ttl to 5 minutes.
func NewLRU[V any](capacity int, ttl time.Duration, opts ...Option[V]) *LRU[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*lruEntry[V]),
		head:     &lruEntry[V]{},
		tail:     &lruEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	for _, o := range opts {
		o(c)
	}
	return c
}

type eviction[V any] struct {
	key    string
	value  V
	reason EvictReason
}

func (c *LRU[V]) notify(ev []eviction[V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range ev {
		c.onEvict(e.key, e.value, e.reason)
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	var val V
	var evicted []eviction[V]

	c.mu.Lock()
	entry, ok := c.items[key]
	switch {
	case !ok:
		c.misses++
	case c.now().After(entry.expiresAt):
		c.removeEntry(entry)
		evicted = append(evicted, eviction[V]{entry.key, entry.value, EvictExpired})
		c.misses++
		ok = false
	default:
		c.moveToFront(entry)
		if c.sliding {
			entry.expiresAt = c.now().Add(c.ttl)
		}
		c.hits++
		val = entry.value
	}
	c.mu.Unlock()

	c.notify(evicted)
	return val, ok
}

// Peek returns the value without updating recency or TTL.
func (c *LRU[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.items[key]; ok && !c.now().After(entry.expiresAt) {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Set inserts or replaces key, evicting the least recently used entry if the
// cache is full.
func (c *LRU[V]) Set(key string, value V) {
	var evicted []eviction[V]

	c.mu.Lock()
	expiresAt := c.now().Add(c.ttl)
	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
	} else {
		entry := &lruEntry[V]{key: key, value: value, expiresAt: expiresAt}
		c.addToFront(entry)
		c.items[key] = entry
		for len(c.items) > c.capacity {
			oldest := c.tail.prev
			c.removeEntry(oldest)
			evicted = append(evicted, eviction[V]{oldest.key, oldest.value, EvictCapacity})
		}
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	entry, ok := c.items[key]
	if ok {
		c.removeEntry(entry)
	}
	c.mu.Unlock()

	if ok {
		c.notify([]eviction[V]{{entry.key, entry.value, EvictRemoved}})
	}
	return ok
}

// Len returns the number of entries, including ones not yet swept.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry without invoking the evict callback.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*lruEntry[V])
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes every expired entry and returns how many it removed.
func (c *LRU[V]) CleanupExpired() int {
	var evicted []eviction[V]

	c.mu.Lock()
	now := c.now()
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			evicted = append(evicted, eviction[V]{entry.key, entry.value, EvictExpired})
		}
		entry = prev
	}
	c.mu.Unlock()

	c.notify(evicted)
	return len(evicted)
}

// Stats returns hit and miss counters and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

func (c *LRU[V]) addToFront(e *lruEntry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
