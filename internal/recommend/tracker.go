// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrMissingGameID is returned for change notifications without a game id.
var ErrMissingGameID = errors.New("change notification requires a game id")

// GameIndex is the part of Indexer the change tracker drives.
type GameIndex interface {
	IndexGame(ctx context.Context, id string) (bool, error)
	RemoveGame(ctx context.Context, id string) error
}

// ChangeTracker applies catalog change notifications to the vector index.
type ChangeTracker struct {
	index  GameIndex
	logger zerolog.Logger
}

// NewChangeTracker creates a tracker over index.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewChangeTracker(index GameIndex, logger zerolog.Logger) *ChangeTracker {
	return &ChangeTracker{
		index:  index,
		logger: logger.With().Str("component", "change_tracker").Logger(),
	}
}

// HandleGameUpdated reindexes a created or updated game. A game that no
// longer exists in the catalog is removed from the index instead.
func (t *ChangeTracker) HandleGameUpdated(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingGameID
	}
	indexed, err := t.index.IndexGame(ctx, id)
	if err != nil {
		return err
	}
	if !indexed {
		t.logger.Info().Str("game_id", id).Msg("Updated game not in catalog, removing from index")
		return t.index.RemoveGame(ctx, id)
	}
	t.logger.Info().Str("game_id", id).Msg("Reindexed updated game")
	return nil
}

// HandleGameDeleted removes a deleted game from the index.
func (t *ChangeTracker) HandleGameDeleted(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingGameID
	}
	if err := t.index.RemoveGame(ctx, id); err != nil {
		return err
	}
	t.logger.Info().Str("game_id", id).Msg("Removed deleted game from index")
	return nil
}
