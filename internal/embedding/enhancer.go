// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"

	"github.com/tomtom215/questline/internal/semantic"
)

// positionDecay is the fraction of a category weight lost across its range.
const positionDecay = 0.3

// keywordValue maps a keyword to a stable value in [-1, 1].
func keywordValue(keyword string) float64 {
	if keyword == "" {
		return 0
	}
	sum := sha256.Sum256([]byte(strings.ToLower(keyword)))
	v := int32(binary.LittleEndian.Uint32(sum[:4])) //nolint:gosec // reinterpreting hash bits
	return float64(v) / float64(math.MaxInt32)
}

func meanKeywordValue(keywords []string) float64 {
	var sum float64
	for _, k := range keywords {
		sum += keywordValue(k)
	}
	return sum / float64(len(keywords))
}

// injectKeywords blends each category's keyword value into its dimension
// range, decaying linearly from weight at the range start.
func injectKeywords(v []float32, in *GameInput, weights semantic.Weights, dims semantic.Dimensions) {
	r := dims.CategoryRanges
	applyRange(v, in.GenreKeywords, weights.Genre, r.Genre)
	applyRange(v, in.MechanicKeywords, weights.Mechanics, r.Mechanics)
	applyRange(v, in.ThemeKeywords, weights.Theme, r.Theme)
	applyRange(v, in.MoodKeywords, weights.Mood, r.Mood)
	applyRange(v, in.ArtStyleKeywords, weights.ArtStyle, r.ArtStyle)
	applyRange(v, in.AudienceKeywords, weights.Audience, r.Audience)
}

func applyRange(v []float32, keywords []string, weight float64, rng semantic.PositionRange) {
	if len(keywords) == 0 || weight <= 0 {
		return
	}
	value := meanKeywordValue(keywords)
	n := rng.Size()
	for i := 0; i < n && rng.Start+i < len(v); i++ {
		p := rng.Start + i
		w := weight * (1 - positionDecay*float64(i)/float64(n))
		v[p] = float32(float64(v[p])*(1-w) + value*w)
	}
}

// resolveWeights applies per-game overrides on top of the configured weights.
func resolveWeights(base semantic.Weights, overrides map[string]float64) semantic.Weights {
	for k, w := range overrides {
		switch k {
		case WeightGenre:
			base.Genre = w
		case WeightMechanics:
			base.Mechanics = w
		case WeightTheme:
			base.Theme = w
		case WeightMood:
			base.Mood = w
		case WeightArtStyle:
			base.ArtStyle = w
		case WeightAudience:
			base.Audience = w
		case WeightSummary:
			base.Summary = w
		case WeightStoryline:
			base.Storyline = w
		}
	}
	return base
}
