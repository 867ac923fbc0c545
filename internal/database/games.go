// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/semantic"
)

const gameColumns = `id, igdb_id, name, summary, storyline, rating, release_date, cover_url, game_type,
	genres, platforms, game_modes, player_perspectives, companies, age_ratings, updated_at`

// categoryColumns maps semantic categories to their list column.
var categoryColumns = map[string]string{
	semantic.CategoryGenre:       "genres",
	semantic.CategoryPlatform:    "platforms",
	semantic.CategoryGameMode:    "game_modes",
	semantic.CategoryPerspective: "player_perspectives",
}

// UpsertGame inserts or replaces a catalog entry. A zero UpdatedAt is set
// to the current time.
func (db *DB) UpsertGame(ctx context.Context, game *models.Game) error {
	if game == nil || game.ID == "" {
		return fmt.Errorf("upsert game: id is required")
	}
	if strings.TrimSpace(game.Name) == "" {
		return fmt.Errorf("upsert game %s: name is required", game.ID)
	}
	updatedAt := game.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	lists := make([]string, 0, 6)
	for _, l := range [][]string{game.Genres, game.Platforms, game.GameModes, game.PlayerPerspectives, game.Companies, game.AgeRatings} {
		encoded, err := encodeList(l)
		if err != nil {
			return fmt.Errorf("upsert game %s: %w", game.ID, err)
		}
		lists = append(lists, encoded)
	}

	var rating sql.NullFloat64
	if game.Rating != nil {
		rating = sql.NullFloat64{Float64: *game.Rating, Valid: true}
	}
	var released sql.NullTime
	if game.ReleaseDate != nil {
		released = sql.NullTime{Time: *game.ReleaseDate, Valid: true}
	}

	query := `INSERT OR REPLACE INTO games (` + gameColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		game.ID, game.IGDBID, game.Name, game.Summary, game.Storyline, rating, released,
		game.CoverURL, game.GameType,
		lists[0], lists[1], lists[2], lists[3], lists[4], lists[5],
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", game.ID, err)
	}
	return nil
}

// DeleteGame removes a game. It reports whether a row existed.
func (db *DB) DeleteGame(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete game %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete game %s: %w", id, err)
	}
	return n > 0, nil
}

// GetGame returns one game or ErrGameNotFound.
func (db *DB) GetGame(ctx context.Context, id string) (*models.Game, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}

// GetGamesByIDs returns the games that exist, in the order of ids.
// Unknown ids are skipped.
func (db *DB) GetGamesByIDs(ctx context.Context, ids []string) ([]*models.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get games: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Game, len(ids))
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	out := make([]*models.Game, 0, len(byID))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
			delete(byID, id)
		}
	}
	return out, nil
}

// ListGames pages through the catalog ordered by id.
func (db *DB) ListGames(ctx context.Context, offset, limit int) ([]*models.Game, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games ORDER BY id LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountGames returns the catalog size.
func (db *DB) CountGames(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// DistinctCategoryValues returns every distinct value of a list column
// across the catalog, sorted. It satisfies semantic.CategorySource.
func (db *DB) DistinctCategoryValues(ctx context.Context, category string) ([]string, error) {
	column, ok := categoryColumns[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	// column comes from the fixed map above
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT `+column+` FROM games`) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", category, err)
	}
	defer rows.Close()

	seen := make(map[string]string)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", category, err)
		}
		values, err := decodeList(raw)
		if err != nil {
			db.logger.Warn().Err(err).Str("category", category).Msg("Skipping undecodable list value")
			continue
		}
		for _, v := range values {
			key := strings.ToLower(v)
			if _, dup := seen[key]; !dup {
				seen[key] = v
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", category, err)
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		g                                                 models.Game
		igdbID                                            sql.NullInt64
		summary, storyline, coverURL, gameType            sql.NullString
		rating                                            sql.NullFloat64
		released                                          sql.NullTime
		genres, platforms, modes, perspectives, companies string
		ageRatings                                        string
	)
	if err := row.Scan(
		&g.ID, &igdbID, &g.Name, &summary, &storyline, &rating, &released, &coverURL, &gameType,
		&genres, &platforms, &modes, &perspectives, &companies, &ageRatings, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.IGDBID = igdbID.Int64
	g.Summary = summary.String
	g.Storyline = storyline.String
	g.CoverURL = coverURL.String
	g.GameType = gameType.String
	if rating.Valid {
		r := rating.Float64
		g.Rating = &r
	}
	if released.Valid {
		t := released.Time.UTC()
		g.ReleaseDate = &t
	}

	var err error
	for _, l := range []struct {
		raw  string
		dest *[]string
	}{
		{genres, &g.Genres},
		{platforms, &g.Platforms},
		{modes, &g.GameModes},
		{perspectives, &g.PlayerPerspectives},
		{companies, &g.Companies},
		{ageRatings, &g.AgeRatings},
	} {
		if *l.dest, err = decodeList(l.raw); err != nil {
			return nil, fmt.Errorf("game %s: %w", g.ID, err)
		}
	}
	return &g, nil
}

func encodeList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// inClause returns "?, ?, ..." for values and the matching args.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}
