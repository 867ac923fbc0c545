// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"context"
	"time"
)

// Weight keys accepted in GameInput.Weights.
const (
	WeightGenre     = "genre"
	WeightMechanics = "mechanics"
	WeightTheme     = "theme"
	WeightMood      = "mood"
	WeightArtStyle  = "art_style"
	WeightAudience  = "audience"
	WeightSummary   = "summary"
	WeightStoryline = "storyline"
)

// GameInput is everything the embedder reads about one game. Keyword lists
// left empty are filled from the semantic keyword cache.
type GameInput struct {
	Name               string
	Summary            string
	Storyline          string
	Genres             []string
	Platforms          []string
	GameModes          []string
	PlayerPerspectives []string
	Companies          []string
	GameType           string
	AgeRatings         []string
	Rating             *float64
	ReleaseDate        *time.Time

	GenreKeywords    []string
	MechanicKeywords []string
	ThemeKeywords    []string
	MoodKeywords     []string
	ArtStyleKeywords []string
	AudienceKeywords []string

	// Extended sections only feed the game text.
	PlatformTypeKeywords      []string
	EraKeywords               []string
	CapabilityKeywords        []string
	PlayerInteractionKeywords []string
	ScaleKeywords             []string
	CommunicationKeywords     []string
	ViewpointKeywords         []string
	ImmersionKeywords         []string
	InterfaceKeywords         []string

	// Weights overrides the configured category weights by key.
	Weights map[string]float64
}

// hasCoreKeywords reports whether any injection list is populated.
func (g *GameInput) hasCoreKeywords() bool {
	return len(g.GenreKeywords)+len(g.MechanicKeywords)+len(g.ThemeKeywords)+
		len(g.MoodKeywords)+len(g.ArtStyleKeywords)+len(g.AudienceKeywords) > 0
}

// UserPreferenceInput aggregates a user's activity for a taste vector.
type UserPreferenceInput struct {
	FavoriteGames          []GameInput
	LikedGames             []GameInput
	LikedReviewTexts       []string
	LikedListDescriptions  []string
	FollowedUsersFavorites []GameInput
}

// IsEmpty reports whether there is nothing to embed.
func (u *UserPreferenceInput) IsEmpty() bool {
	return u == nil || len(u.FavoriteGames)+len(u.LikedGames)+len(u.LikedReviewTexts)+
		len(u.LikedListDescriptions)+len(u.FollowedUsersFavorites) == 0
}

// TextEmbedder turns text into dense vectors.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Name identifies the provider in logs, metrics and health output.
	Name() string
}
