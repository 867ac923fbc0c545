// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
database_schema.go - Database Schema Management

Tables:
  - games: the catalog; list-valued columns (genres, platforms, ...) hold
    JSON arrays of strings
  - users: display names for followed-user attribution
  - favorites, game_likes: a user's direct game activity
  - reviews, review_likes: review text a user liked
  - game_lists, game_list_likes: list descriptions a user liked
  - follows: the social graph edge (follower -> following)

Indexes cover the per-user lookups the preference builder runs on every
personalized request.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates every table and index if missing.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, q := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR PRIMARY KEY,
			igdb_id BIGINT,
			name VARCHAR NOT NULL,
			summary VARCHAR,
			storyline VARCHAR,
			rating DOUBLE,
			release_date TIMESTAMP,
			cover_url VARCHAR,
			game_type VARCHAR,
			genres VARCHAR NOT NULL DEFAULT '[]',
			platforms VARCHAR NOT NULL DEFAULT '[]',
			game_modes VARCHAR NOT NULL DEFAULT '[]',
			player_perspectives VARCHAR NOT NULL DEFAULT '[]',
			companies VARCHAR NOT NULL DEFAULT '[]',
			age_ratings VARCHAR NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			display_name VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			user_id VARCHAR NOT NULL,
			game_id VARCHAR NOT NULL,
			added_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, game_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game_likes (
			user_id VARCHAR NOT NULL,
			game_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, game_id)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			game_id VARCHAR NOT NULL,
			content VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_likes (
			user_id VARCHAR NOT NULL,
			review_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, review_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game_lists (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			description VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_list_likes (
			user_id VARCHAR NOT NULL,
			list_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, list_id)
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id VARCHAR NOT NULL,
			following_id VARCHAR NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		)`,
	}
}

// indexCreationQueries only indexes columns that are part of the conflict
// target of their table's INSERT OR REPLACE. DuckDB keeps the old value of
// any other indexed column on replace, so games and reviews carry no
// secondary indexes; the drops clean up databases created before that.
func indexCreationQueries() []string {
	return []string{
		`DROP INDEX IF EXISTS idx_games_name`,
		`DROP INDEX IF EXISTS idx_reviews_game`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_game ON favorites(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_id)`,
	}
}
