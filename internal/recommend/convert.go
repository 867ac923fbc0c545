// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"strconv"
	"strings"

	"github.com/tomtom215/questline/internal/embedding"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/vectordb"
)

// GameInput maps a catalog game onto the embedding input. Keyword lists are
// left empty for the embedding service to fill from the keyword cache.
func GameInput(g *models.Game) embedding.GameInput {
	return embedding.GameInput{
		Name:               g.Name,
		Summary:            g.Summary,
		Storyline:          g.Storyline,
		Genres:             g.Genres,
		Platforms:          g.Platforms,
		GameModes:          g.GameModes,
		PlayerPerspectives: g.PlayerPerspectives,
		Companies:          g.Companies,
		GameType:           g.GameType,
		AgeRatings:         g.AgeRatings,
		Rating:             g.Rating,
		ReleaseDate:        g.ReleaseDate,
	}
}

// GamePayload builds the vector payload stored alongside a game's vector.
// List fields are comma-separated.
func GamePayload(g *models.Game) map[string]string {
	p := map[string]string{
		vectordb.PayloadName:               g.Name,
		vectordb.PayloadSummary:            g.Summary,
		vectordb.PayloadStoryline:          g.Storyline,
		vectordb.PayloadGenres:             strings.Join(g.Genres, ","),
		vectordb.PayloadPlatforms:          strings.Join(g.Platforms, ","),
		vectordb.PayloadGameModes:          strings.Join(g.GameModes, ","),
		vectordb.PayloadPlayerPerspectives: strings.Join(g.PlayerPerspectives, ","),
		vectordb.PayloadCoverURL:           g.CoverURL,
	}
	if g.Rating != nil {
		p[vectordb.PayloadRating] = strconv.FormatFloat(*g.Rating, 'f', 2, 64)
	}
	if y := g.ReleaseYear(); y > 0 {
		p[vectordb.PayloadReleaseYear] = strconv.Itoa(y)
	}
	if g.IGDBID > 0 {
		p[vectordb.PayloadIGDBID] = strconv.FormatInt(g.IGDBID, 10)
	}
	return p
}

// recommendationFromHit maps a search hit back onto a response entry.
func recommendationFromHit(hit *vectordb.SearchResult) GameRecommendation {
	p := hit.Payload
	rec := GameRecommendation{
		GameID:            hit.ID,
		Name:              p[vectordb.PayloadName],
		Summary:           p[vectordb.PayloadSummary],
		CoverURL:          p[vectordb.PayloadCoverURL],
		Genres:            splitCSV(p[vectordb.PayloadGenres]),
		Platforms:         splitCSV(p[vectordb.PayloadPlatforms]),
		GameModes:         splitCSV(p[vectordb.PayloadGameModes]),
		ConfidenceScore:   hit.Score,
		UserActivityMatch: emptyActivityMatch(),
	}
	if r, err := strconv.ParseFloat(p[vectordb.PayloadRating], 64); err == nil {
		rec.Rating = &r
	}
	if y, err := strconv.Atoi(p[vectordb.PayloadReleaseYear]); err == nil {
		rec.ReleaseYear = y
	}
	return rec
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
