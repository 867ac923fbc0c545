// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"errors"
	"time"
)

// Request limits.
const (
	MaxQueryLength    = 500
	MaxResultsLimit   = 50
	defaultMaxResults = 10
)

var (
	// ErrEmbeddingFailed wraps failures of the query embedding stage.
	ErrEmbeddingFailed = errors.New("query embedding failed")
	// ErrSearchFailed wraps failures of the vector search stage.
	ErrSearchFailed = errors.New("vector search failed")
	// ErrConversationNotFound is returned when continuing an unknown or
	// expired conversation.
	ErrConversationNotFound = errors.New("conversation not found")
)

// Stage is a step of the recommendation pipeline. Stages run strictly in
// declaration order.
type Stage int

const (
	// StageReceived means the request was validated.
	StageReceived Stage = iota
	// StageAnalyzed means query intent was extracted (or defaulted).
	StageAnalyzed
	// StageEmbedded means the search vector exists.
	StageEmbedded
	// StageSearched means candidates were retrieved.
	StageSearched
	// StageScored means candidates were boosted, ranked and trimmed.
	StageScored
	// StageExplained means reasoning and follow-ups were attached.
	StageExplained
	// StageDelivered means the turn was persisted.
	StageDelivered
)

// String returns a human-readable name for the stage.
func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageAnalyzed:
		return "analyzed"
	case StageEmbedded:
		return "embedded"
	case StageSearched:
		return "searched"
	case StageScored:
		return "scored"
	case StageExplained:
		return "explained"
	case StageDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Request is one recommendation turn.
type Request struct {
	Query          string `json:"query" validate:"required,notblank,max=500"`
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,max=128"`
	// MaxResults of 0 uses the configured default.
	MaxResults int `json:"maxResults" validate:"gte=0,lte=50"`
	// IncludeFollowedUsersPreferences is ignored for anonymous callers.
	IncludeFollowedUsersPreferences bool `json:"includeFollowedUsersPreferences"`
}

// NewRequest returns a request with the documented defaults.
func NewRequest(query string) Request {
	return Request{Query: query, IncludeFollowedUsersPreferences: true}
}

// Caller identifies who is asking. A nil Caller or empty UserID is
// anonymous.
type Caller struct {
	UserID string
}

// Authenticated reports whether c carries a user.
func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != ""
}

func (c *Caller) userID() string {
	if c == nil {
		return ""
	}
	return c.UserID
}

// UserActivityMatch explains how a recommendation relates to the caller's
// own and followed users' activity.
type UserActivityMatch struct {
	IsUserFavorite            bool     `json:"isUserFavorite"`
	IsUserLiked               bool     `json:"isUserLiked"`
	IsFromFollowedUsers       bool     `json:"isFromFollowedUsers"`
	FollowedUsersWhoLiked     []string `json:"followedUsersWhoLiked"`
	SimilarToUserFavorites    []string `json:"similarToUserFavorites"`
	SimilarToUserLikedGames   []string `json:"similarToUserLikedGames"`
	SimilarToUserLikedReviews []string `json:"similarToUserLikedReviews"`
	SimilarToUserLikedLists   []string `json:"similarToUserLikedLists"`
}

func emptyActivityMatch() UserActivityMatch {
	return UserActivityMatch{
		FollowedUsersWhoLiked:     []string{},
		SimilarToUserFavorites:    []string{},
		SimilarToUserLikedGames:   []string{},
		SimilarToUserLikedReviews: []string{},
		SimilarToUserLikedLists:   []string{},
	}
}

// GameRecommendation is one ranked game in a response.
type GameRecommendation struct {
	GameID            string            `json:"gameId"`
	Name              string            `json:"name"`
	Summary           string            `json:"summary"`
	CoverURL          string            `json:"coverUrl,omitempty"`
	Rating            *float64          `json:"rating,omitempty"`
	ReleaseYear       int               `json:"releaseYear,omitempty"`
	Genres            []string          `json:"genres"`
	Platforms         []string          `json:"platforms"`
	GameModes         []string          `json:"gameModes,omitempty"`
	Reasoning         string            `json:"reasoning"`
	ConfidenceScore   float64           `json:"confidenceScore"`
	UserActivityMatch UserActivityMatch `json:"userActivityMatch"`
}

// Response is the result of one turn.
type Response struct {
	Games             []GameRecommendation `json:"games"`
	ResponseMessage   string               `json:"responseMessage,omitempty"`
	FollowUpQuestions []string             `json:"followUpQuestions"`
	ConversationID    string               `json:"conversationId,omitempty"`
	RequiresFollowUp  bool                 `json:"requiresFollowUp"`
}

// HealthStatus summarizes the readiness of the pipeline's collaborators.
type HealthStatus struct {
	Healthy             bool      `json:"healthy"`
	VectorStore         string    `json:"vectorStore"`
	VectorStoreError    string    `json:"vectorStoreError,omitempty"`
	Collection          string    `json:"collection"`
	IndexedGames        int       `json:"indexedGames"`
	KeywordCacheReady   bool      `json:"keywordCacheReady"`
	SemanticConfigReady bool      `json:"semanticConfigReady"`
	Embedder            string    `json:"embedder"`
	LanguageModel       string    `json:"languageModel"`
	ActiveConversations int       `json:"activeConversations"`
	CheckedAt           time.Time `json:"checkedAt"`
}
