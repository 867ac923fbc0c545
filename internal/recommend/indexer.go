// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/database"
	"github.com/tomtom215/questline/internal/embedding"
	"github.com/tomtom215/questline/internal/metrics"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/vectordb"
)

// DefaultIndexBatchSize is the number of games embedded and upserted at once.
const DefaultIndexBatchSize = 50

// ErrIndexingInProgress is returned when a full reindex is already running.
var ErrIndexingInProgress = errors.New("indexing already in progress")

// CatalogReader reads games to index. *database.DB implements it.
type CatalogReader interface {
	ListGames(ctx context.Context, offset, limit int) ([]*models.Game, error)
	GetGame(ctx context.Context, id string) (*models.Game, error)
	CountGames(ctx context.Context) (int, error)
}

// GameEmbedder turns catalog games into vectors. *embedding.Service
// implements it.
type GameEmbedder interface {
	GenerateGameEmbedding(ctx context.Context, in *embedding.GameInput) ([]float32, error)
	ProcessGamesInBatch(ctx context.Context, inputs []embedding.GameInput) ([][]float32, error)
}

// IndexRun summarizes one full indexing pass.
type IndexRun struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Indexed    int       `json:"indexed"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// IndexStatus reports catalog and vector store sizes.
type IndexStatus struct {
	Collection   string    `json:"collection"`
	CatalogGames int       `json:"catalogGames"`
	IndexedGames int       `json:"indexedGames"`
	Running      bool      `json:"running"`
	LastRun      *IndexRun `json:"lastRun,omitempty"`
}

// Indexer keeps the vector store in step with the game catalog.
type Indexer struct {
	catalog    CatalogReader
	embedder   GameEmbedder
	store      vectordb.Store
	collection string
	batchSize  int
	logger     zerolog.Logger

	runMu   sync.Mutex
	mu      sync.RWMutex
	running bool
	lastRun *IndexRun
}

// NewIndexer creates an indexer writing to collection. A non-positive
// batchSize uses DefaultIndexBatchSize.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexer(catalog CatalogReader, embedder GameEmbedder, store vectordb.Store, collection string, batchSize int, logger zerolog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &Indexer{
		catalog:    catalog,
		embedder:   embedder,
		store:      store,
		collection: collection,
		batchSize:  batchSize,
		logger:     logger.With().Str("component", "indexer").Logger(),
	}
}

// EnsureCollection creates the collection when it does not exist.
func (ix *Indexer) EnsureCollection(ctx context.Context) error {
	exists, err := ix.store.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", ix.collection, err)
	}
	if exists {
		return nil
	}
	if err := ix.store.CreateCollection(ctx, ix.collection, embedding.Dimensions); err != nil {
		return fmt.Errorf("create collection %s: %w", ix.collection, err)
	}
	ix.logger.Info().
		Str("collection", ix.collection).
		Int("dimensions", embedding.Dimensions).
		Msg("Created vector collection")
	return nil
}

// IndexAll embeds and upserts the whole catalog. A failed batch is logged
// and counted; the pass continues with the next one. Only one pass runs at
// a time.
func (ix *Indexer) IndexAll(ctx context.Context) (*IndexRun, error) {
	if !ix.runMu.TryLock() {
		return nil, ErrIndexingInProgress
	}
	defer ix.runMu.Unlock()
	ix.setRunning(true)
	defer ix.setRunning(false)

	run := &IndexRun{StartedAt: time.Now().UTC()}
	defer func() {
		run.FinishedAt = time.Now().UTC()
		ix.mu.Lock()
		snapshot := *run
		ix.lastRun = &snapshot
		ix.mu.Unlock()
	}()

	if err := ix.EnsureCollection(ctx); err != nil {
		run.Error = err.Error()
		return run, err
	}

	total, err := ix.catalog.CountGames(ctx)
	if err != nil {
		run.Error = err.Error()
		return run, fmt.Errorf("count games: %w", err)
	}
	ix.logger.Info().
		Int("games", total).
		Int("batch_size", ix.batchSize).
		Msg("Starting catalog indexing")

	for offset := 0; ; offset += ix.batchSize {
		if err := ctx.Err(); err != nil {
			run.Error = err.Error()
			return run, err
		}
		games, err := ix.catalog.ListGames(ctx, offset, ix.batchSize)
		if err != nil {
			run.Error = err.Error()
			return run, fmt.Errorf("list games at offset %d: %w", offset, err)
		}
		if len(games) == 0 {
			break
		}

		if err := ix.indexBatch(ctx, games); err != nil {
			run.Failed += len(games)
			ix.logger.Error().Err(err).
				Int("offset", offset).
				Int("batch_size", len(games)).
				Msg("Failed to index batch")
		} else {
			run.Indexed += len(games)
		}

		ix.logger.Debug().
			Int("indexed", run.Indexed).
			Int("failed", run.Failed).
			Int("total", total).
			Msg("Processed batch")

		if len(games) < ix.batchSize {
			break
		}
	}

	ix.logger.Info().
		Int("indexed", run.Indexed).
		Int("failed", run.Failed).
		Dur("duration", time.Since(run.StartedAt)).
		Msg("Catalog indexing complete")
	return run, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, games []*models.Game) (err error) {
	defer func() { metrics.RecordIndexed("bulk", len(games), err) }()

	inputs := make([]embedding.GameInput, len(games))
	for i, g := range games {
		inputs[i] = GameInput(g)
	}
	vectors, err := ix.embedder.ProcessGamesInBatch(ctx, inputs)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(games) {
		return fmt.Errorf("embed batch: got %d vectors for %d games", len(vectors), len(games))
	}

	points := make([]vectordb.Point, len(games))
	for i, g := range games {
		points[i] = vectordb.Point{ID: g.ID, Vector: vectors[i], Payload: GamePayload(g)}
	}
	if err := ix.store.UpsertVectorsBulk(ctx, ix.collection, points); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// IndexGame embeds and upserts one game. It reports false when the game is
// not in the catalog.
func (ix *Indexer) IndexGame(ctx context.Context, id string) (indexed bool, err error) {
	game, err := ix.catalog.GetGame(ctx, id)
	if errors.Is(err, database.ErrGameNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load game %s: %w", id, err)
	}
	defer func() { metrics.RecordIndexed("single", 1, err) }()

	if err := ix.EnsureCollection(ctx); err != nil {
		return false, err
	}
	in := GameInput(game)
	vector, err := ix.embedder.GenerateGameEmbedding(ctx, &in)
	if err != nil {
		return false, fmt.Errorf("embed game %s: %w", id, err)
	}
	point := vectordb.Point{ID: game.ID, Vector: vector, Payload: GamePayload(game)}
	if err := ix.store.UpsertVector(ctx, ix.collection, point); err != nil {
		return false, fmt.Errorf("upsert game %s: %w", id, err)
	}
	ix.logger.Debug().Str("game_id", id).Msg("Indexed game")
	return true, nil
}

// RemoveGame deletes a game's vector. Removing a game that was never
// indexed is not an error.
func (ix *Indexer) RemoveGame(ctx context.Context, id string) (err error) {
	defer func() { metrics.RecordIndexed("delete", 1, err) }()

	err = ix.store.DeleteVector(ctx, ix.collection, id)
	if errors.Is(err, vectordb.ErrCollectionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove game %s: %w", id, err)
	}
	ix.logger.Debug().Str("game_id", id).Msg("Removed game from index")
	return nil
}

// Status reports the catalog size, the indexed point count and the last
// full pass.
func (ix *Indexer) Status(ctx context.Context) (*IndexStatus, error) {
	total, err := ix.catalog.CountGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}
	st := &IndexStatus{Collection: ix.collection, CatalogGames: total}

	points, err := ix.store.PointCount(ctx, ix.collection)
	switch {
	case errors.Is(err, vectordb.ErrCollectionNotFound):
	case err != nil:
		return nil, fmt.Errorf("count points: %w", err)
	default:
		st.IndexedGames = points
	}

	ix.mu.RLock()
	st.Running = ix.running
	if ix.lastRun != nil {
		last := *ix.lastRun
		st.LastRun = &last
	}
	ix.mu.RUnlock()
	return st, nil
}

func (ix *Indexer) setRunning(v bool) {
	ix.mu.Lock()
	ix.running = v
	ix.mu.Unlock()
}
