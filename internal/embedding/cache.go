// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"time"

	"github.com/tomtom215/questline/internal/cache"
	"github.com/tomtom215/questline/internal/metrics"
)

// Cache maps input text to its raw provider vector. A nil *Cache is a valid
// cache that never hits.
type Cache struct {
	lru *cache.LRU[[]float32]
}

// NewCache creates a cache holding at most size vectors for ttl each.
// size <= 0 returns nil (caching disabled).
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{lru: cache.NewLRU[[]float32](size, ttl)}
}

// Get returns a copy of the cached vector for text.
func (c *Cache) Get(text string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(text)
	metrics.RecordEmbeddingCache(ok)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Set stores a copy of v.
func (c *Cache) Set(text string, v []float32) {
	if c == nil {
		return
	}
	c.lru.Set(text, clone(v))
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Stats returns lookup counters.
func (c *Cache) Stats() (hits, misses int64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	return c.lru.Stats()
}
