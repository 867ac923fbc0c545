// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package models

import "time"

// User is the minimal profile the recommendation core reads from the social
// graph.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// Favorite marks a game as one of a user's favorites.
type Favorite struct {
	UserID  string    `json:"userId"`
	GameID  string    `json:"gameId"`
	AddedAt time.Time `json:"addedAt"`
}

// GameLike records a user liking a game.
type GameLike struct {
	UserID    string    `json:"userId"`
	GameID    string    `json:"gameId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a user-written review of a game.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	GameID    string    `json:"gameId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewLike records a user liking someone's review.
type ReviewLike struct {
	UserID    string    `json:"userId"`
	ReviewID  string    `json:"reviewId"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameList is a user-curated list of games.
type GameList struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GameListLike records a user liking a game list.
type GameListLike struct {
	UserID    string    `json:"userId"`
	ListID    string    `json:"listId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow records that FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}
