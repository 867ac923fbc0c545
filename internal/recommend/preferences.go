// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/embedding"
	"github.com/tomtom215/questline/internal/models"
)

// Limits on how much activity is read per preference profile.
const (
	FavoriteLimit         = 20
	LikedLimit            = 20
	LikedReviewLimit      = 50
	LikedListLimit        = 30
	FollowedFavoriteLimit = 50

	maxSimilarHints  = 3
	reviewHintLength = 80
)

// ActivityReader is the social-graph store the preference service reads.
// database.DB implements it.
type ActivityReader interface {
	FavoriteGames(ctx context.Context, userID string, limit int) ([]*models.Game, error)
	LikedGames(ctx context.Context, userID string, limit int) ([]*models.Game, error)
	FollowedUsersFavoriteGames(ctx context.Context, userID string, limit int) ([]*models.Game, error)
	LikedReviewTexts(ctx context.Context, userID string, limit int) ([]string, error)
	LikedListDescriptions(ctx context.Context, userID string, limit int) ([]string, error)
	FavoriteGameIDs(ctx context.Context, userID string, gameIDs []string) (map[string]bool, error)
	LikedGameIDs(ctx context.Context, userID string, gameIDs []string) (map[string]bool, error)
	FollowedFavoritesByGame(ctx context.Context, userID string, gameIDs []string) (map[string][]string, error)
}

// Preferences supplies per-user signal to the engine.
type Preferences interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	ActivitySet(ctx context.Context, userID string, gameIDs []string) (*ActivitySet, error)
}

// Profile is a user's recent activity.
type Profile struct {
	UserID                string
	FavoriteGames         []*models.Game
	LikedGames            []*models.Game
	LikedReviewTexts      []string
	LikedListDescriptions []string
	FollowedFavorites     []*models.Game
}

// IsEmpty reports whether the profile holds no activity at all.
func (p *Profile) IsEmpty() bool {
	return p == nil || len(p.FavoriteGames)+len(p.LikedGames)+len(p.LikedReviewTexts)+
		len(p.LikedListDescriptions)+len(p.FollowedFavorites) == 0
}

// EmbeddingInput converts the profile for the embedding service.
func (p *Profile) EmbeddingInput() *embedding.UserPreferenceInput {
	if p == nil {
		return &embedding.UserPreferenceInput{}
	}
	return &embedding.UserPreferenceInput{
		FavoriteGames:          gameInputs(p.FavoriteGames),
		LikedGames:             gameInputs(p.LikedGames),
		LikedReviewTexts:       p.LikedReviewTexts,
		LikedListDescriptions:  p.LikedListDescriptions,
		FollowedUsersFavorites: gameInputs(p.FollowedFavorites),
	}
}

func gameInputs(games []*models.Game) []embedding.GameInput {
	out := make([]embedding.GameInput, 0, len(games))
	for _, g := range games {
		out = append(out, GameInput(g))
	}
	return out
}

// similarHints fills the "similar to" lists of m for rec: the caller's
// favorite and liked games sharing a genre, and liked reviews and lists
// that mention the game by name.
func (p *Profile) similarHints(rec *GameRecommendation, m *UserActivityMatch) {
	if p == nil {
		return
	}
	m.SimilarToUserFavorites = sharedGenreNames(p.FavoriteGames, rec)
	m.SimilarToUserLikedGames = sharedGenreNames(p.LikedGames, rec)
	m.SimilarToUserLikedReviews = mentioning(p.LikedReviewTexts, rec.Name)
	m.SimilarToUserLikedLists = mentioning(p.LikedListDescriptions, rec.Name)
}

func sharedGenreNames(games []*models.Game, rec *GameRecommendation) []string {
	out := []string{}
	for _, g := range games {
		if len(out) == maxSimilarHints {
			break
		}
		if g.ID == rec.GameID || containsFold(out, g.Name) {
			continue
		}
		if intersectFold(g.Genres, rec.Genres) {
			out = append(out, g.Name)
		}
	}
	return out
}

func mentioning(texts []string, name string) []string {
	out := []string{}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return out
	}
	for _, t := range texts {
		if len(out) == maxSimilarHints {
			break
		}
		if strings.Contains(strings.ToLower(t), needle) {
			out = append(out, truncateRunes(t, reviewHintLength))
		}
	}
	return out
}

// ActivitySet answers set-membership questions for one request's results.
type ActivitySet struct {
	Favorites  map[string]bool
	Liked      map[string]bool
	FollowedBy map[string][]string
}

// Match returns the activity flags for one game.
func (a *ActivitySet) Match(gameID string) UserActivityMatch {
	m := emptyActivityMatch()
	if a == nil {
		return m
	}
	m.IsUserFavorite = a.Favorites[gameID]
	m.IsUserLiked = a.Liked[gameID]
	if names := a.FollowedBy[gameID]; len(names) > 0 {
		m.IsFromFollowedUsers = true
		m.FollowedUsersWhoLiked = append([]string(nil), names...)
	}
	return m
}

// PreferenceService builds preference profiles and activity sets from the
// social graph.
type PreferenceService struct {
	reader ActivityReader
	logger zerolog.Logger
}

// NewPreferenceService creates a preference service over reader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPreferenceService(reader ActivityReader, logger zerolog.Logger) *PreferenceService {
	return &PreferenceService{
		reader: reader,
		logger: logger.With().Str("component", "preferences").Logger(),
	}
}

// Profile reads a user's recent favorites, likes, liked reviews and lists,
// and followed users' favorites.
func (s *PreferenceService) Profile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{UserID: userID}
	var err error
	if p.FavoriteGames, err = s.reader.FavoriteGames(ctx, userID, FavoriteLimit); err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	if p.LikedGames, err = s.reader.LikedGames(ctx, userID, LikedLimit); err != nil {
		return nil, fmt.Errorf("liked games: %w", err)
	}
	if p.LikedReviewTexts, err = s.reader.LikedReviewTexts(ctx, userID, LikedReviewLimit); err != nil {
		return nil, fmt.Errorf("liked reviews: %w", err)
	}
	if p.LikedListDescriptions, err = s.reader.LikedListDescriptions(ctx, userID, LikedListLimit); err != nil {
		return nil, fmt.Errorf("liked lists: %w", err)
	}
	if p.FollowedFavorites, err = s.reader.FollowedUsersFavoriteGames(ctx, userID, FollowedFavoriteLimit); err != nil {
		return nil, fmt.Errorf("followed favorites: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("favorites", len(p.FavoriteGames)).
		Int("liked", len(p.LikedGames)).
		Int("reviews", len(p.LikedReviewTexts)).
		Int("lists", len(p.LikedListDescriptions)).
		Int("followed", len(p.FollowedFavorites)).
		Msg("built preference profile")
	return p, nil
}

// BuildUserPreferenceInput reads the profile and converts it for embedding.
func (s *PreferenceService) BuildUserPreferenceInput(ctx context.Context, userID string) (*embedding.UserPreferenceInput, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.EmbeddingInput(), nil
}

// ActivitySet reads which of gameIDs the user favorited or liked, and which
// followed users favorited each.
func (s *PreferenceService) ActivitySet(ctx context.Context, userID string, gameIDs []string) (*ActivitySet, error) {
	favorites, err := s.reader.FavoriteGameIDs(ctx, userID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("favorite ids: %w", err)
	}
	liked, err := s.reader.LikedGameIDs(ctx, userID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("liked ids: %w", err)
	}
	followed, err := s.reader.FollowedFavoritesByGame(ctx, userID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("followed favorites: %w", err)
	}
	return &ActivitySet{Favorites: favorites, Liked: liked, FollowedBy: followed}, nil
}

var _ Preferences = (*PreferenceService)(nil)
