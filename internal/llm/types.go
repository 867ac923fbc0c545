// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package llm

import (
	"context"
	"errors"
)

// ErrMalformedResponse is returned when a completion does not contain the
// JSON the prompt asked for.
var ErrMalformedResponse = errors.New("malformed language model response")

// DateRange bounds release years; either end may be open.
type DateRange struct {
	FromYear *int `json:"fromYear,omitempty"`
	ToYear   *int `json:"toYear,omitempty"`
}

// IsZero reports whether neither end is set.
func (d *DateRange) IsZero() bool {
	return d == nil || (d.FromYear == nil && d.ToYear == nil)
}

// QueryAnalysis is the structured intent extracted from a free-text query.
type QueryAnalysis struct {
	Genres           []string   `json:"genres"`
	Platforms        []string   `json:"platforms"`
	GameModes        []string   `json:"gameModes"`
	Moods            []string   `json:"moods"`
	ReleaseDateRange *DateRange `json:"releaseDateRange,omitempty"`
	ProcessedQuery   string     `json:"processedQuery"`
	IsAmbiguous      bool       `json:"isAmbiguous"`
	ConfidenceScore  float64    `json:"confidenceScore"`
}

// Unanalyzed is the analysis used when the model is unavailable: no
// extracted terms, the raw query as processed query, flagged ambiguous.
func Unanalyzed(query string) *QueryAnalysis {
	return &QueryAnalysis{
		ProcessedQuery: query,
		IsAmbiguous:    true,
	}
}

// Candidate is the game metadata a model sees when explaining results.
type Candidate struct {
	Name       string
	Genres     []string
	Platforms  []string
	Summary    string
	Rating     *float64
	Confidence float64
	Reasoning  string
}

// LanguageModel understands queries and writes explanations.
type LanguageModel interface {
	AnalyzeQuery(ctx context.Context, query string) (*QueryAnalysis, error)
	GenerateResponse(ctx context.Context, prompt, conversationContext string) (string, error)
	GenerateFollowUpQuestions(ctx context.Context, query string, candidates []Candidate) ([]string, error)
	ExplainRecommendations(ctx context.Context, candidates []Candidate, query string) (string, error)
	// ExplainGameRecommendation writes model text for a single game. The
	// engine builds per-game reasoning from rules and does not call it.
	ExplainGameRecommendation(ctx context.Context, candidate Candidate, query string) (string, error)
	// Name identifies the model in logs and health output.
	Name() string
}

// FallbackFollowUps are offered when follow-up generation fails.
var FallbackFollowUps = []string{
	"Would you like games similar to any specific genre?",
	"Do you prefer newer or older games?",
}
