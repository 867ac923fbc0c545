// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package models

import (
	"time"
)

// Game is a catalog entry as stored in the games table and indexed into the
// vector store. Rating is on a 0-10 scale.
type Game struct {
	ID                 string     `json:"id"`
	IGDBID             int64      `json:"igdbId,omitempty"`
	Name               string     `json:"name"`
	Summary            string     `json:"summary,omitempty"`
	Storyline          string     `json:"storyline,omitempty"`
	Rating             *float64   `json:"rating,omitempty"`
	ReleaseDate        *time.Time `json:"releaseDate,omitempty"`
	CoverURL           string     `json:"coverUrl,omitempty"`
	GameType           string     `json:"gameType,omitempty"`
	Genres             []string   `json:"genres,omitempty"`
	Platforms          []string   `json:"platforms,omitempty"`
	GameModes          []string   `json:"gameModes,omitempty"`
	PlayerPerspectives []string   `json:"playerPerspectives,omitempty"`
	Companies          []string   `json:"companies,omitempty"`
	AgeRatings         []string   `json:"ageRatings,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ReleaseYear returns the release year or 0 when unknown.
func (g *Game) ReleaseYear() int {
	if g.ReleaseDate == nil {
		return 0
	}
	return g.ReleaseDate.Year()
}

// RatingValue returns the rating or 0 when unrated.
func (g *Game) RatingValue() float64 {
	if g.Rating == nil {
		return 0
	}
	return *g.Rating
}
