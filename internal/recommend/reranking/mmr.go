// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/questline/internal/recommend"
)

// maxRerankSize bounds the similarity matrix.
const maxRerankSize = 1000

// MMR implements Maximal Marginal Relevance reranking over game genres.
// It greedily picks the game that maximizes
//
//	lambda * confidence(i) - (1-lambda) * max(jaccard(genres(i), genres(s)))
//
// over already selected games s. Lambda 1 keeps the input order.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker. Lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	return &MMR{lambda: max(0, min(1, lambda))}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank returns at most k games ordered by MMR score. Ties keep the input
// order, so equal candidates stay sorted by confidence.
func (m *MMR) Rerank(_ context.Context, items []recommend.GameRecommendation, k int) []recommend.GameRecommendation {
	if len(items) == 0 || k <= 0 {
		return items
	}
	k = min(k, maxRerankSize, len(items))

	if m.lambda >= 1.0 {
		return items[:k]
	}

	n := min(len(items), maxRerankSize)
	genres := make([]map[string]struct{}, n)
	for i := 0; i < n; i++ {
		genres[i] = genreSet(items[i].Genres)
	}

	selected := make([]recommend.GameRecommendation, 0, k)
	taken := make([]bool, n)
	// maxSim[i] is the highest similarity of i to any selected game.
	maxSim := make([]float64, n)

	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i := 0; i < n; i++ {
			if taken[i] {
				continue
			}
			score := m.lambda*items[i].ConfidenceScore - (1-m.lambda)*maxSim[i]
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		taken[best] = true
		selected = append(selected, items[best])
		for i := 0; i < n; i++ {
			if !taken[i] {
				maxSim[i] = max(maxSim[i], jaccard(genres[i], genres[best]))
			}
		}
	}
	return selected
}

func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			set[g] = struct{}{}
		}
	}
	return set
}

// jaccard computes the Jaccard similarity of two genre sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
