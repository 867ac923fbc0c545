// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"time"

	"github.com/tomtom215/questline/internal/llm"
	"github.com/tomtom215/questline/internal/metrics"
)

// instrumented records Prometheus metrics around another Store.
type instrumented struct {
	Store
}

// Instrument wraps store with operation metrics.
func Instrument(store Store) Store {
	if _, ok := store.(*instrumented); ok {
		return store
	}
	return &instrumented{Store: store}
}

func (s *instrumented) CreateCollection(ctx context.Context, name string, size int) error {
	err := s.Store.CreateCollection(ctx, name, size)
	metrics.RecordVectorOp(s.Name(), "create_collection", err)
	return err
}

func (s *instrumented) UpsertVector(ctx context.Context, collection string, point Point) error {
	err := s.Store.UpsertVector(ctx, collection, point)
	metrics.RecordVectorOp(s.Name(), "upsert", err)
	return err
}

func (s *instrumented) UpsertVectorsBulk(ctx context.Context, collection string, points []Point) error {
	err := s.Store.UpsertVectorsBulk(ctx, collection, points)
	metrics.RecordVectorOp(s.Name(), "upsert_bulk", err)
	return err
}

func (s *instrumented) Search(ctx context.Context, collection string, vector []float32, limit int, filter Filter, analysis *llm.QueryAnalysis) ([]SearchResult, error) {
	start := time.Now()
	results, err := s.Store.Search(ctx, collection, vector, limit, filter, analysis)
	metrics.RecordVectorSearch(s.Name(), time.Since(start), err)
	return results, err
}

func (s *instrumented) DeleteVector(ctx context.Context, collection, id string) error {
	err := s.Store.DeleteVector(ctx, collection, id)
	metrics.RecordVectorOp(s.Name(), "delete", err)
	return err
}
