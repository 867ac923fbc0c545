// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/questline/internal/models"
)

// SeedData is the JSON layout of a seed file. Every section is optional.
type SeedData struct {
	Games         []models.Game         `json:"games"`
	Users         []models.User         `json:"users"`
	Favorites     []models.Favorite     `json:"favorites"`
	Likes         []models.GameLike     `json:"likes"`
	Reviews       []models.Review       `json:"reviews"`
	ReviewLikes   []models.ReviewLike   `json:"reviewLikes"`
	GameLists     []models.GameList     `json:"gameLists"`
	GameListLikes []models.GameListLike `json:"gameListLikes"`
	Follows       []models.Follow       `json:"follows"`
}

// SeedFromFile loads path when the games table is empty. It returns the
// number of games inserted, 0 when the catalog already had data.
func (db *DB) SeedFromFile(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := db.CountGames(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		db.logger.Debug().Int("games", n).Msg("Catalog not empty, skipping seed")
		return 0, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := db.Seed(ctx, &data); err != nil {
		return 0, err
	}
	return len(data.Games), nil
}

// Seed writes every record in data.
func (db *DB) Seed(ctx context.Context, data *SeedData) error {
	start := time.Now()

	for i := range data.Games {
		if err := db.UpsertGame(ctx, &data.Games[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.Users {
		if err := db.AddUser(ctx, &data.Users[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.Favorites {
		if err := db.AddFavorite(ctx, &data.Favorites[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.Likes {
		if err := db.AddLike(ctx, &data.Likes[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.Reviews {
		if err := db.AddReview(ctx, &data.Reviews[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.ReviewLikes {
		if err := db.LikeReview(ctx, &data.ReviewLikes[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.GameLists {
		if err := db.AddGameList(ctx, &data.GameLists[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.GameListLikes {
		if err := db.LikeGameList(ctx, &data.GameListLikes[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := range data.Follows {
		if err := db.Follow(ctx, &data.Follows[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	db.logger.Info().
		Int("games", len(data.Games)).
		Int("users", len(data.Users)).
		Dur("duration", time.Since(start)).
		Msg("Seeded catalog database")
	return nil
}
