// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tomtom215/questline/internal/llm"
)

type memCollection struct {
	size   int
	points map[string]Point
}

// MemoryStore is an in-process brute-force vector store. It is also the
// search index behind BadgerStore.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

// Name implements Store.
func (s *MemoryStore) Name() string {
	return "memory"
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateCollection implements Store. Creating an existing collection with
// the same size is a no-op.
func (s *MemoryStore) CreateCollection(_ context.Context, name string, size int) error {
	if size <= 0 {
		return fmt.Errorf("create collection %s: invalid size %d", name, size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		if c.size != size {
			return fmt.Errorf("%w: collection %s has size %d, requested %d", ErrDimensionMismatch, name, c.size, size)
		}
		return nil
	}
	s.collections[name] = &memCollection{size: size, points: make(map[string]Point)}
	return nil
}

// CollectionExists implements Store.
func (s *MemoryStore) CollectionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// UpsertVector implements Store.
func (s *MemoryStore) UpsertVector(ctx context.Context, collection string, point Point) error {
	return s.UpsertVectorsBulk(ctx, collection, []Point{point})
}

// UpsertVectorsBulk implements Store. Every point is validated before any
// is written.
func (s *MemoryStore) UpsertVectorsBulk(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	prepared, err := preparePoints(points, c.size)
	if err != nil {
		return err
	}
	for _, p := range prepared {
		c.points[p.ID] = p
	}
	return nil
}

// Search implements Store.
func (s *MemoryStore) Search(ctx context.Context, collection string, vector []float32, limit int, filter Filter, analysis *llm.QueryAnalysis) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(vector) != c.size {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %d", ErrDimensionMismatch, len(vector), c.size)
	}
	query := normalized(vector)
	f := compileFilter(filter, analysis)

	results := make([]SearchResult, 0, min(len(c.points), max(limit, 0)*4+16))
	for _, p := range c.points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.empty() && !f.matches(p.Payload) {
			continue
		}
		results = append(results, SearchResult{
			ID:      p.ID,
			Score:   dot(query, p.Vector) + analysisBoost(p.Payload, analysis),
			Payload: copyPayload(p.Payload),
		})
	}
	return rank(results, limit), nil
}

// DeleteVector implements Store. Deleting a missing point is not an error.
func (s *MemoryStore) DeleteVector(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	delete(c.points, id)
	return nil
}

// PointCount implements Store.
func (s *MemoryStore) PointCount(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return len(c.points), nil
}

// collectionSize returns the configured size, or 0 when missing.
func (s *MemoryStore) collectionSize(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return c.size
	}
	return 0
}

// preparePoints validates points against size and returns normalized copies.
func preparePoints(points []Point, size int) ([]Point, error) {
	out := make([]Point, len(points))
	for i, p := range points {
		if p.ID == "" {
			return nil, ErrInvalidPoint
		}
		if len(p.Vector) != size {
			return nil, fmt.Errorf("%w: point %s has %d dimensions, collection %d", ErrDimensionMismatch, p.ID, len(p.Vector), size)
		}
		for _, x := range p.Vector {
			if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("point %s: vector contains NaN or Inf", p.ID)
			}
		}
		out[i] = Point{ID: p.ID, Vector: normalized(p.Vector), Payload: copyPayload(p.Payload)}
	}
	return out, nil
}

func normalized(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		copy(out, v)
		return out
	}
	mag := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / mag)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a) && i < len(b); i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
