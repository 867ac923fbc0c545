// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"strings"
)

// QueryEnhancer appends cached combination keywords to a processed query
// so the query embedding carries the same vocabulary as game embeddings.
type QueryEnhancer struct {
	cache *KeywordCache
}

// NewQueryEnhancer creates an enhancer reading from cache.
func NewQueryEnhancer(cache *KeywordCache) *QueryEnhancer {
	return &QueryEnhancer{cache: cache}
}

// Enhance returns the processed query followed by the keywords of every
// cached genre pair, platform x genre and game mode x genre combination,
// then the moods. Duplicates and blanks are dropped.
func (e *QueryEnhancer) Enhance(processedQuery string, genres, platforms, gameModes, moods []string) string {
	terms := []string{processedQuery}

	for i := 0; i < len(genres)-1; i++ {
		for j := i + 1; j < len(genres); j++ {
			if m := e.cache.CombinationKeywords(genres[i], genres[j]); m != nil {
				terms = append(terms, m.GenreKeywords...)
				terms = append(terms, m.MechanicKeywords...)
				terms = append(terms, m.ThemeKeywords...)
			}
		}
	}

	for _, p := range head(platforms, 2) {
		for _, g := range head(genres, 3) {
			if m := e.cache.CombinationKeywords(p, g); m != nil {
				terms = append(terms, m.PlatformTypeKeywords...)
				terms = append(terms, m.EraKeywords...)
				terms = append(terms, m.CapabilityKeywords...)
				terms = append(terms, m.GenreKeywords...)
			}
		}
	}

	for _, gm := range head(gameModes, 2) {
		for _, g := range head(genres, 2) {
			if m := e.cache.CombinationKeywords(gm, g); m != nil {
				terms = append(terms, m.PlayerInteractionKeywords...)
				terms = append(terms, m.ScaleKeywords...)
				terms = append(terms, m.CommunicationKeywords...)
			}
		}
	}

	terms = append(terms, moods...)

	var out []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = appendUnique(out, t)
	}
	return strings.Join(out, " ")
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
