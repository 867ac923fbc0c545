// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"errors"

	"github.com/tomtom215/questline/internal/llm"
)

var (
	// ErrCollectionNotFound is returned for operations on a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when a vector does not match the
	// collection's configured size.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidPoint is returned for points without an ID.
	ErrInvalidPoint = errors.New("point requires an id")
)

// Payload keys written by the indexer and understood by filters.
const (
	PayloadName               = "name"
	PayloadSummary            = "summary"
	PayloadStoryline          = "storyline"
	PayloadRating             = "rating"
	PayloadReleaseYear        = "release_year"
	PayloadGenres             = "genres"
	PayloadPlatforms          = "platforms"
	PayloadGameModes          = "game_modes"
	PayloadPlayerPerspectives = "player_perspectives"
	PayloadCoverURL           = "cover_url"
	PayloadIGDBID             = "igdb_id"
)

// Point is one stored vector.
type Point struct {
	ID      string            `json:"id"`
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"`
	Payload map[string]string `json:"payload"`
}

// Filter restricts a search by payload. Keys ending in _from or _to are
// numeric bounds on the key without the suffix; every other key is a text
// condition whose comma-separated values match case-insensitively.
type Filter map[string]string

// Store is a vector database.
type Store interface {
	CreateCollection(ctx context.Context, name string, size int) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	UpsertVector(ctx context.Context, collection string, point Point) error
	// UpsertVectorsBulk writes all points or none.
	UpsertVectorsBulk(ctx context.Context, collection string, points []Point) error
	// Search ranks points by cosine similarity, applying filter and the
	// structured boosts derived from analysis (which may be nil).
	Search(ctx context.Context, collection string, vector []float32, limit int, filter Filter, analysis *llm.QueryAnalysis) ([]SearchResult, error)
	DeleteVector(ctx context.Context, collection, id string) error
	PointCount(ctx context.Context, collection string) (int, error)
	// Name identifies the backend in logs and metrics.
	Name() string
	Close() error
}
