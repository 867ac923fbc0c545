// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/config"
)

// Backend names accepted in vectordb.provider.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendQdrant = "qdrant"
)

// New opens the configured backend wrapped with metrics.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.VectorDBConfig, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Provider {
	case "", BackendMemory:
		store = NewMemoryStore()
	case BackendBadger:
		store, err = OpenBadgerStore(cfg.Path, logger)
	case BackendQdrant:
		store, err = NewQdrantStore(QdrantConfig{
			URL:     cfg.URL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(store), nil
}
