// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"fmt"
	"strings"

	"github.com/tomtom215/questline/internal/llm"
)

// Reasoning thresholds.
const (
	highRatingThreshold  = 8.0
	strongMatchThreshold = 0.8
	maxFollowedNames     = 2
)

// FallbackReasoning is used when no specific reason applies.
const FallbackReasoning = "Recommended based on content similarity."

// Generic messages used when the language model cannot explain results.
const (
	genericResponseMessage = "Here are some games that match what you're looking for."
	noResultsMessage       = "I couldn't find games matching that request. Try describing it differently."
)

// Reasoning builds the per-game explanation from the analysis and the
// caller's activity. It never calls the language model.
func Reasoning(rec *GameRecommendation, analysis *llm.QueryAnalysis, authenticated bool) string {
	var reasons []string

	if analysis != nil {
		if matched := intersectionFold(rec.Genres, analysis.Genres); len(matched) > 0 {
			reasons = append(reasons, "Matches your preferred genres: "+strings.Join(matched, ", "))
		}
		if matched := intersectionFold(rec.Platforms, analysis.Platforms); len(matched) > 0 {
			reasons = append(reasons, "Available on "+strings.Join(matched, ", "))
		}
	}

	if authenticated {
		m := rec.UserActivityMatch
		switch {
		case m.IsUserFavorite:
			reasons = append(reasons, "You've favorited this game")
		case m.IsUserLiked:
			reasons = append(reasons, "You've liked this game")
		}
		if names := m.FollowedUsersWhoLiked; len(names) > 0 {
			reasons = append(reasons, fmt.Sprintf("Liked by %s (who you follow)",
				strings.Join(names[:min(len(names), maxFollowedNames)], " and ")))
		}
	}

	if rec.Rating != nil && *rec.Rating >= highRatingThreshold {
		reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f/10)", *rec.Rating))
	}
	if rec.ConfidenceScore > strongMatchThreshold {
		reasons = append(reasons, "Strong match for your query")
	}

	if len(reasons) == 0 {
		return FallbackReasoning
	}
	return strings.Join(reasons, ". ") + "."
}

// candidates converts recommendations for the language model.
func candidates(recs []GameRecommendation) []llm.Candidate {
	out := make([]llm.Candidate, len(recs))
	for i := range recs {
		r := &recs[i]
		out[i] = llm.Candidate{
			Name:       r.Name,
			Genres:     r.Genres,
			Platforms:  r.Platforms,
			Summary:    r.Summary,
			Rating:     r.Rating,
			Confidence: r.ConfidenceScore,
			Reasoning:  r.Reasoning,
		}
	}
	return out
}

// intersectionFold returns the values of a that appear in b, ignoring case,
// in a's order.
func intersectionFold(a, b []string) []string {
	var out []string
	for _, v := range a {
		if containsFold(b, v) && !containsFold(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func intersectFold(a, b []string) bool {
	for _, v := range a {
		if containsFold(b, v) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
