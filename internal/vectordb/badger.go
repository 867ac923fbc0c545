// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/llm"
)

// Key prefixes for BadgerDB storage
const (
	collectionKeyPrefix = "collection:"
	pointKeyPrefix      = "point:"
)

type collectionMeta struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type storedPoint struct {
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

// BadgerStore persists collections and points in BadgerDB and serves
// searches from an in-memory index rebuilt on open. Writes go to Badger
// first, so the index never holds data that was not persisted.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	index  *MemoryStore
	logger zerolog.Logger
}

// OpenBadgerStore opens (or creates) a store at path. An empty path keeps
// everything in memory, which is useful for tests.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerStore(path string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Compression = options.Snappy
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	s, err := NewBadgerStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore wraps an open database and loads its contents.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) (*BadgerStore, error) {
	s := &BadgerStore{
		db:     db,
		index:  NewMemoryStore(),
		logger: logger.With().Str("component", "vectordb_badger").Logger(),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load vector store: %w", err)
	}
	return s, nil
}

// Name implements Store.
func (s *BadgerStore) Name() string {
	return "badger"
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// CreateCollection implements Store.
func (s *BadgerStore) CreateCollection(ctx context.Context, name string, size int) error {
	if name == "" || strings.Contains(name, ":") {
		return fmt.Errorf("create collection: invalid name %q", name)
	}
	if existing := s.index.collectionSize(name); existing > 0 {
		return s.index.CreateCollection(ctx, name, size)
	}
	if size <= 0 {
		return fmt.Errorf("create collection %s: invalid size %d", name, size)
	}

	data, err := json.Marshal(collectionMeta{Name: name, Size: size, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(collectionKeyPrefix+name), data)
	}); err != nil {
		return fmt.Errorf("persist collection %s: %w", name, err)
	}
	return s.index.CreateCollection(ctx, name, size)
}

// CollectionExists implements Store.
func (s *BadgerStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.index.CollectionExists(ctx, name)
}

// UpsertVector implements Store.
func (s *BadgerStore) UpsertVector(ctx context.Context, collection string, point Point) error {
	return s.UpsertVectorsBulk(ctx, collection, []Point{point})
}

// UpsertVectorsBulk implements Store. All points are written in one
// transaction; a batch too large for a transaction fails as a whole.
func (s *BadgerStore) UpsertVectorsBulk(ctx context.Context, collection string, points []Point) error {
	size := s.index.collectionSize(collection)
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	prepared, err := preparePoints(points, size)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, p := range prepared {
			data, err := json.Marshal(storedPoint{Vector: p.Vector, Payload: p.Payload})
			if err != nil {
				return fmt.Errorf("marshal point %s: %w", p.ID, err)
			}
			if err := txn.Set(pointKey(collection, p.ID), data); err != nil {
				return fmt.Errorf("set point %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist %d points: %w", len(prepared), err)
	}
	return s.index.UpsertVectorsBulk(ctx, collection, prepared)
}

// Search implements Store.
func (s *BadgerStore) Search(ctx context.Context, collection string, vector []float32, limit int, filter Filter, analysis *llm.QueryAnalysis) ([]SearchResult, error) {
	return s.index.Search(ctx, collection, vector, limit, filter, analysis)
}

// DeleteVector implements Store.
func (s *BadgerStore) DeleteVector(ctx context.Context, collection, id string) error {
	if s.index.collectionSize(collection) == 0 {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(pointKey(collection, id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete point %s: %w", id, err)
	}
	return s.index.DeleteVector(ctx, collection, id)
}

// PointCount implements Store.
func (s *BadgerStore) PointCount(ctx context.Context, collection string) (int, error) {
	return s.index.PointCount(ctx, collection)
}

func pointKey(collection, id string) []byte {
	return []byte(pointKeyPrefix + collection + ":" + id)
}

// load rebuilds the in-memory index from disk.
func (s *BadgerStore) load() error {
	ctx := context.Background()
	start := time.Now()
	points := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(collectionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta collectionMeta
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				return fmt.Errorf("decode collection %s: %w", it.Item().Key(), err)
			}
			if err := s.index.CreateCollection(ctx, meta.Name, meta.Size); err != nil {
				return err
			}
		}

		prefix = []byte(pointKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			rest := strings.TrimPrefix(key, pointKeyPrefix)
			collection, id, ok := strings.Cut(rest, ":")
			if !ok {
				s.logger.Warn().Str("key", key).Msg("skipping malformed point key")
				continue
			}
			var sp storedPoint
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sp)
			}); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("skipping undecodable point")
				continue
			}
			if err := s.index.UpsertVector(ctx, collection, Point{ID: id, Vector: sp.Vector, Payload: sp.Payload}); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("skipping invalid point")
				continue
			}
			points++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int("points", points).
		Dur("duration", time.Since(start)).
		Msg("vector store loaded")
	return nil
}
