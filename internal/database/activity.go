// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/questline/internal/models"
)

// UnknownDisplayName labels followed users without a display name.
const UnknownDisplayName = "Unknown"

// AddUser inserts or replaces a user profile.
func (db *DB) AddUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("add user: id is required")
	}
	var name sql.NullString
	if user.DisplayName != "" {
		name = sql.NullString{String: user.DisplayName, Valid: true}
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, display_name) VALUES (?, ?)`, user.ID, name); err != nil {
		return fmt.Errorf("add user %s: %w", user.ID, err)
	}
	return nil
}

// AddFavorite records a favorite. A zero AddedAt is set to now.
func (db *DB) AddFavorite(ctx context.Context, fav *models.Favorite) error {
	return db.execActivity(ctx, "favorite",
		`INSERT OR REPLACE INTO favorites (user_id, game_id, added_at) VALUES (?, ?, ?)`,
		fav.UserID, fav.GameID, fav.AddedAt)
}

// AddLike records a game like.
func (db *DB) AddLike(ctx context.Context, like *models.GameLike) error {
	return db.execActivity(ctx, "like",
		`INSERT OR REPLACE INTO game_likes (user_id, game_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.GameID, like.CreatedAt)
}

// AddReview stores a review.
func (db *DB) AddReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		return fmt.Errorf("add review: id is required")
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO reviews (id, user_id, game_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		review.ID, review.UserID, review.GameID, review.Content, nowIfZero(review.CreatedAt)); err != nil {
		return fmt.Errorf("add review %s: %w", review.ID, err)
	}
	return nil
}

// LikeReview records a user liking a review.
func (db *DB) LikeReview(ctx context.Context, like *models.ReviewLike) error {
	return db.execActivity(ctx, "review like",
		`INSERT OR REPLACE INTO review_likes (user_id, review_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.ReviewID, like.CreatedAt)
}

// AddGameList stores a game list.
func (db *DB) AddGameList(ctx context.Context, list *models.GameList) error {
	if list.ID == "" {
		return fmt.Errorf("add game list: id is required")
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO game_lists (id, user_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.Name, list.Description, nowIfZero(list.CreatedAt)); err != nil {
		return fmt.Errorf("add game list %s: %w", list.ID, err)
	}
	return nil
}

// LikeGameList records a user liking a game list.
func (db *DB) LikeGameList(ctx context.Context, like *models.GameListLike) error {
	return db.execActivity(ctx, "list like",
		`INSERT OR REPLACE INTO game_list_likes (user_id, list_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.ListID, like.CreatedAt)
}

// Follow records a follow edge. Following oneself is rejected.
func (db *DB) Follow(ctx context.Context, follow *models.Follow) error {
	if follow.FollowerID == "" || follow.FollowingID == "" {
		return fmt.Errorf("follow: both user ids are required")
	}
	if follow.FollowerID == follow.FollowingID {
		return fmt.Errorf("follow: user %s cannot follow themselves", follow.FollowerID)
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO follows (follower_id, following_id) VALUES (?, ?)`,
		follow.FollowerID, follow.FollowingID); err != nil {
		return fmt.Errorf("follow %s -> %s: %w", follow.FollowerID, follow.FollowingID, err)
	}
	return nil
}

func (db *DB) execActivity(ctx context.Context, kind, query, userID, targetID string, at time.Time) error {
	if userID == "" || targetID == "" {
		return fmt.Errorf("add %s: user and target ids are required", kind)
	}
	if _, err := db.conn.ExecContext(ctx, query, userID, targetID, nowIfZero(at)); err != nil {
		return fmt.Errorf("add %s for user %s: %w", kind, userID, err)
	}
	return nil
}

// FavoriteGames returns a user's most recently favorited games.
func (db *DB) FavoriteGames(ctx context.Context, userID string, limit int) ([]*models.Game, error) {
	return db.queryGames(ctx, "favorite games",
		`SELECT `+prefixed("g", gameColumns)+`
		FROM favorites f JOIN games g ON g.id = f.game_id
		WHERE f.user_id = ?
		ORDER BY f.added_at DESC, g.id
		LIMIT ?`, userID, limit)
}

// LikedGames returns a user's most recently liked games.
func (db *DB) LikedGames(ctx context.Context, userID string, limit int) ([]*models.Game, error) {
	return db.queryGames(ctx, "liked games",
		`SELECT `+prefixed("g", gameColumns)+`
		FROM game_likes l JOIN games g ON g.id = l.game_id
		WHERE l.user_id = ?
		ORDER BY l.created_at DESC, g.id
		LIMIT ?`, userID, limit)
}

// FollowedUsersFavoriteGames returns the most recent favorites of the users
// userID follows. A game favorited by several followed users appears once
// per favorite.
func (db *DB) FollowedUsersFavoriteGames(ctx context.Context, userID string, limit int) ([]*models.Game, error) {
	return db.queryGames(ctx, "followed favorites",
		`SELECT `+prefixed("g", gameColumns)+`
		FROM follows fo
		JOIN favorites f ON f.user_id = fo.following_id
		JOIN games g ON g.id = f.game_id
		WHERE fo.follower_id = ?
		ORDER BY f.added_at DESC, g.id
		LIMIT ?`, userID, limit)
}

// LikedReviewTexts returns the non-empty text of reviews userID liked,
// most recent like first.
func (db *DB) LikedReviewTexts(ctx context.Context, userID string, limit int) ([]string, error) {
	return db.queryStrings(ctx, "liked reviews",
		`SELECT r.content
		FROM review_likes rl JOIN reviews r ON r.id = rl.review_id
		WHERE rl.user_id = ? AND r.content IS NOT NULL AND r.content <> ''
		ORDER BY rl.created_at DESC, r.id
		LIMIT ?`, userID, limit)
}

// LikedListDescriptions returns the non-empty descriptions of game lists
// userID liked, most recent like first.
func (db *DB) LikedListDescriptions(ctx context.Context, userID string, limit int) ([]string, error) {
	return db.queryStrings(ctx, "liked lists",
		`SELECT gl.description
		FROM game_list_likes ll JOIN game_lists gl ON gl.id = ll.list_id
		WHERE ll.user_id = ? AND gl.description IS NOT NULL AND gl.description <> ''
		ORDER BY ll.created_at DESC, gl.id
		LIMIT ?`, userID, limit)
}

// FavoriteGameIDs returns which of gameIDs userID has favorited.
func (db *DB) FavoriteGameIDs(ctx context.Context, userID string, gameIDs []string) (map[string]bool, error) {
	return db.membership(ctx, "favorites", "favorites", userID, gameIDs)
}

// LikedGameIDs returns which of gameIDs userID has liked.
func (db *DB) LikedGameIDs(ctx context.Context, userID string, gameIDs []string) (map[string]bool, error) {
	return db.membership(ctx, "likes", "game_likes", userID, gameIDs)
}

// FollowedFavoritesByGame maps each of gameIDs favorited by someone userID
// follows to those users' display names, ordered by user id.
func (db *DB) FollowedFavoritesByGame(ctx context.Context, userID string, gameIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if userID == "" || len(gameIDs) == 0 {
		return out, nil
	}
	placeholders, args := inClause(gameIDs)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT f.game_id, u.display_name
		FROM follows fo
		JOIN favorites f ON f.user_id = fo.following_id
		LEFT JOIN users u ON u.id = fo.following_id
		WHERE fo.follower_id = ? AND f.game_id IN (`+placeholders+`)
		ORDER BY f.game_id, fo.following_id`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("followed favorites for %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var gameID string
		var name sql.NullString
		if err := rows.Scan(&gameID, &name); err != nil {
			return nil, fmt.Errorf("scan followed favorite: %w", err)
		}
		display := name.String
		if display == "" {
			display = UnknownDisplayName
		}
		out[gameID] = append(out[gameID], display)
	}
	return out, rows.Err()
}

func (db *DB) membership(ctx context.Context, what, table, userID string, gameIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if userID == "" || len(gameIDs) == 0 {
		return out, nil
	}
	placeholders, args := inClause(gameIDs)
	// table comes from the fixed set of callers above
	rows, err := db.conn.QueryContext(ctx, //nolint:gosec
		`SELECT game_id FROM `+table+` WHERE user_id = ? AND game_id IN (`+placeholders+`)`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", what, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (db *DB) queryGames(ctx context.Context, what, query, userID string, limit int) ([]*models.Game, error) {
	if userID == "" || limit <= 0 {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", what, userID, err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (db *DB) queryStrings(ctx context.Context, what, query, userID string, limit int) ([]string, error) {
	if userID == "" || limit <= 0 {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", what, userID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
