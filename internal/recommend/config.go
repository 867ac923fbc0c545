// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/questline/internal/config"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Collection is the vector store collection holding game vectors.
	Collection string

	// Timeouts bounds the turn and each external call.
	Timeouts TimeoutConfig

	// QueryWeight is the share of the query vector when blending with a
	// user preference vector. The remainder goes to the user.
	QueryWeight float64

	// DefaultMaxResults applies when a request leaves MaxResults at 0.
	DefaultMaxResults int

	// Boosts are added to a result's confidence for matching user activity.
	Boosts BoostConfig

	// FollowUpConfidence is the analysis confidence below which follow-up
	// questions are generated.
	FollowUpConfidence float64

	// MinConfidentResults is the result count below which follow-up
	// questions are generated.
	MinConfidentResults int
}

// TimeoutConfig holds the per-stage deadlines.
type TimeoutConfig struct {
	Turn        time.Duration
	Analysis    time.Duration
	Embedding   time.Duration
	Search      time.Duration
	Explanation time.Duration
}

// BoostConfig holds activity boosts.
type BoostConfig struct {
	Favorite float64
	Liked    float64
	Followed float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Collection: "games",
		Timeouts: TimeoutConfig{
			Turn:        30 * time.Second,
			Analysis:    8 * time.Second,
			Embedding:   10 * time.Second,
			Search:      5 * time.Second,
			Explanation: 8 * time.Second,
		},
		QueryWeight:       0.7,
		DefaultMaxResults: defaultMaxResults,
		Boosts: BoostConfig{
			Favorite: 0.2,
			Liked:    0.1,
			Followed: 0.15,
		},
		FollowUpConfidence:  0.7,
		MinConfidentResults: 3,
	}
}

// ConfigFromApp maps the application configuration onto engine settings.
// Zero values keep the defaults.
func ConfigFromApp(rc *config.RecommendConfig, collection string) *Config {
	cfg := DefaultConfig()
	if collection != "" {
		cfg.Collection = collection
	}
	setDuration(&cfg.Timeouts.Turn, rc.TurnTimeout)
	setDuration(&cfg.Timeouts.Analysis, rc.AnalysisTimeout)
	setDuration(&cfg.Timeouts.Embedding, rc.EmbeddingTimeout)
	setDuration(&cfg.Timeouts.Search, rc.SearchTimeout)
	setDuration(&cfg.Timeouts.Explanation, rc.ExplanationTimeout)
	if rc.QueryWeight > 0 {
		cfg.QueryWeight = rc.QueryWeight
	}
	if rc.DefaultMaxResults > 0 {
		cfg.DefaultMaxResults = rc.DefaultMaxResults
	}
	if rc.FavoriteBoost > 0 {
		cfg.Boosts.Favorite = rc.FavoriteBoost
	}
	if rc.LikedBoost > 0 {
		cfg.Boosts.Liked = rc.LikedBoost
	}
	if rc.FollowedBoost > 0 {
		cfg.Boosts.Followed = rc.FollowedBoost
	}
	if rc.FollowUpConfidence > 0 {
		cfg.FollowUpConfidence = rc.FollowUpConfidence
	}
	return cfg
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("collection must not be empty")
	}
	if c.QueryWeight <= 0 || c.QueryWeight > 1 {
		return fmt.Errorf("query_weight must be in (0, 1], got %f", c.QueryWeight)
	}
	if c.QueryWeight < 0.5 {
		return fmt.Errorf("query_weight must be at least 0.5 so user signal cannot dominate, got %f", c.QueryWeight)
	}
	if c.DefaultMaxResults < 1 || c.DefaultMaxResults > MaxResultsLimit {
		return fmt.Errorf("default_max_results must be in [1, %d], got %d", MaxResultsLimit, c.DefaultMaxResults)
	}
	for name, b := range map[string]float64{
		"favorite": c.Boosts.Favorite,
		"liked":    c.Boosts.Liked,
		"followed": c.Boosts.Followed,
	} {
		if b < 0 || b > 1 {
			return fmt.Errorf("boosts.%s must be in [0, 1], got %f", name, b)
		}
	}
	if c.FollowUpConfidence < 0 || c.FollowUpConfidence > 1 {
		return fmt.Errorf("follow_up_confidence must be in [0, 1], got %f", c.FollowUpConfidence)
	}
	if c.MinConfidentResults < 0 {
		return fmt.Errorf("min_confident_results must be non-negative, got %d", c.MinConfidentResults)
	}
	for name, d := range map[string]time.Duration{
		"turn":        c.Timeouts.Turn,
		"analysis":    c.Timeouts.Analysis,
		"embedding":   c.Timeouts.Embedding,
		"search":      c.Timeouts.Search,
		"explanation": c.Timeouts.Explanation,
	} {
		if d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive, got %v", name, d)
		}
	}
	return nil
}
