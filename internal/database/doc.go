// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package database stores the game catalog and the social activity the
// recommendation core reads, in an embedded DuckDB database.
//
// # Overview
//
// The recommendation pipeline treats the catalog and the social graph as
// upstream collaborators. This package serves both from one DuckDB file:
//
//   - database.go: connection lifecycle and pool configuration
//   - database_schema.go: table and index creation
//   - games.go: catalog CRUD, paging for the indexer, distinct category
//     values for the keyword cache (semantic.CategorySource)
//   - activity.go: favorites, likes, reviews, lists and follows, plus the
//     preference and activity-match reads used by personalization
//   - seed.go: JSON seed loading for demos and tests
//
// # Storage Layout
//
// List-valued game attributes (genres, platforms, game modes, player
// perspectives, companies, age ratings) are stored as JSON arrays in VARCHAR
// columns and decoded with goccy/go-json. Writes use INSERT OR REPLACE so
// reseeding and reindexing are idempotent.
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database, logger)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	games, err := db.FavoriteGames(ctx, userID, 20)
//
// # Thread Safety
//
// All methods are safe for concurrent use; database/sql pools connections
// and DuckDB serializes conflicting writes.
package database
