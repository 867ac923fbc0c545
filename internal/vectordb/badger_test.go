// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedStore(t, s)
	if err := s.DeleteVector(ctx, testCollection, "3"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBadgerStore(dir, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	exists, err := reopened.CollectionExists(ctx, testCollection)
	if err != nil || !exists {
		t.Fatalf("expected collection to survive reopen, got %v %v", exists, err)
	}
	if n, _ := reopened.PointCount(ctx, testCollection); n != 2 {
		t.Errorf("expected 2 points after reopen, got %d", n)
	}
	results, err := reopened.Search(ctx, testCollection, axis(4, 0, 0), 1, Filter{PayloadGenres: "rpg"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Payload[PayloadName] != "Hades" {
		t.Errorf("expected Hades with payload, got %+v", results)
	}
}

func TestBadgerStore_Validation(t *testing.T) {
	t.Parallel()

	s, err := OpenBadgerStore("", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateCollection(ctx, "bad:name", 4); err == nil {
		t.Error("expected name with colon to be rejected")
	}
	if err := s.UpsertVector(ctx, "missing", Point{ID: "1", Vector: axis(4, 0, 0)}); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := s.CreateCollection(ctx, testCollection, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCollection(ctx, testCollection, 5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	err = s.UpsertVectorsBulk(ctx, testCollection, []Point{
		{ID: "1", Vector: axis(4, 0, 0)},
		{ID: "2", Vector: axis(2, 0, 0)},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if n, _ := s.PointCount(ctx, testCollection); n != 0 {
		t.Errorf("expected failed batch to write nothing, got %d", n)
	}
}
