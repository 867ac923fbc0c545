// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"strings"
)

// Combination limits.
const (
	maxCombinations         = 200
	maxGenresPerTheme       = 3
	maxPlatformsPerEra      = 2
	maxGenresPerPlatform    = 3
	maxModesConsidered      = 2
	maxGenresPerGameMode    = 3
	maxGenresPerPerspective = 3
	minCombinationKeywords  = 3
)

var (
	modernEraKeywords = []string{"modern", "contemporary", "current"}
	retroEraKeywords  = []string{"retro", "vintage", "classic", "old-school"}

	immersivePerspectiveKeywords  = []string{"first-person", "immersive", "realistic", "simulation"}
	accessiblePerspectiveKeywords = []string{"third-person", "accessible", "casual", "family-friendly"}

	popularGenrePairs = [][2]string{
		{"Action", "RPG"},
		{"Horror", "Survival"},
		{"Racing", "Simulation"},
		{"Strategy", "Real-time"},
		{"Puzzle", "Adventure"},
		{"Fighting", "Action"},
		{"Sports", "Simulation"},
		{"Shooter", "First-person"},
	}
)

type combination struct {
	a, b       string
	catA, catB string
}

// generateCombinations derives candidate pairs from the resolved mappings
// of a snapshot. Output order is deterministic for a given snapshot.
func generateCombinations(s *cacheSnapshot) []combination {
	genres := s.lists[CategoryGenre]
	genreMap := s.mappings[CategoryGenre]

	var out []combination
	seen := make(map[string]struct{})
	add := func(c combination) {
		if len(out) >= maxCombinations || strings.EqualFold(c.a, c.b) {
			return
		}
		key := CombinationKey(c.a, c.b)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	// Genres sharing a leading theme keyword.
	var themes []string
	byTheme := make(map[string][]string)
	for _, g := range genres {
		m := genreMap[strings.ToLower(g)]
		if len(m.ThemeKeywords) == 0 || m.ThemeKeywords[0] == "" {
			continue
		}
		theme := strings.ToLower(m.ThemeKeywords[0])
		if _, ok := byTheme[theme]; !ok {
			themes = append(themes, theme)
		}
		byTheme[theme] = append(byTheme[theme], g)
	}
	for _, theme := range themes {
		group := byTheme[theme]
		if len(group) < 2 {
			continue
		}
		if len(group) > maxGenresPerTheme {
			group = group[:maxGenresPerTheme]
		}
		for i := 0; i < len(group)-1; i++ {
			for j := i + 1; j < len(group); j++ {
				add(combination{group[i], group[j], CategoryGenre, CategoryGenre})
			}
		}
	}

	for _, pair := range popularGenrePairs {
		primary := firstContaining(genres, pair[0])
		secondary := firstContaining(genres, pair[1])
		if primary != "" && secondary != "" {
			add(combination{primary, secondary, CategoryGenre, CategoryGenre})
		}
	}

	// Platforms by era with era-compatible genres.
	platformMap := s.mappings[CategoryPlatform]
	eraPlatforms := map[string][]string{}
	for _, p := range s.lists[CategoryPlatform] {
		era := classifyEra(platformMap[strings.ToLower(p)].EraKeywords)
		if era == "" {
			continue
		}
		if len(eraPlatforms[era]) < maxPlatformsPerEra {
			eraPlatforms[era] = append(eraPlatforms[era], p)
		}
	}
	for _, era := range []string{"modern", "retro"} {
		var compatible []string
		for _, g := range genres {
			if era == "modern" || hasClassicMechanics(genreMap[strings.ToLower(g)]) {
				compatible = append(compatible, g)
			}
		}
		if len(compatible) > maxGenresPerPlatform {
			compatible = compatible[:maxGenresPerPlatform]
		}
		for _, p := range eraPlatforms[era] {
			for _, g := range compatible {
				add(combination{p, g, CategoryPlatform, CategoryGenre})
			}
		}
	}

	// Game modes with genres sharing audience or mood.
	modeMap := s.mappings[CategoryGameMode]
	for i, mode := range s.lists[CategoryGameMode] {
		if i >= maxModesConsidered {
			break
		}
		mm := modeMap[strings.ToLower(mode)]
		n := 0
		for _, g := range genres {
			if n >= maxGenresPerGameMode {
				break
			}
			gm := genreMap[strings.ToLower(g)]
			if intersectsFold(mm.AudienceKeywords, gm.AudienceKeywords) || intersectsFold(mm.MoodKeywords, gm.MoodKeywords) {
				add(combination{mode, g, CategoryGameMode, CategoryGenre})
				n++
			}
		}
	}

	// Perspectives with mood-compatible or complexity-compatible genres.
	perspectiveMap := s.mappings[CategoryPerspective]
	for i, p := range s.lists[CategoryPerspective] {
		if i >= maxModesConsidered {
			break
		}
		pm := perspectiveMap[strings.ToLower(p)]
		n := 0
		for _, g := range genres {
			if n >= maxGenresPerPerspective {
				break
			}
			gm := genreMap[strings.ToLower(g)]
			if intersectsFold(pm.MoodKeywords, gm.MoodKeywords) || complexityCompatible(pm, gm) {
				add(combination{p, g, CategoryPerspective, CategoryGenre})
				n++
			}
		}
	}

	return out
}

func firstContaining(values []string, needle string) string {
	n := strings.ToLower(needle)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), n) {
			return v
		}
	}
	return ""
}

func classifyEra(eraKeywords []string) string {
	if intersectsFold(eraKeywords, modernEraKeywords) {
		return "modern"
	}
	if intersectsFold(eraKeywords, retroEraKeywords) {
		return "retro"
	}
	return ""
}

func hasClassicMechanics(m *CategoryMapping) bool {
	for _, mech := range m.MechanicKeywords {
		lm := strings.ToLower(mech)
		for _, retro := range retroEraKeywords {
			if strings.Contains(lm, retro) {
				return true
			}
		}
	}
	return false
}

// complexityCompatible pairs immersive perspectives with non-casual genres
// and non-immersive perspectives with casual ones.
func complexityCompatible(perspective, genre *CategoryMapping) bool {
	immersive := intersectsFold(perspective.ImmersionKeywords, immersivePerspectiveKeywords)
	accessible := intersectsFold(genre.AudienceKeywords, accessiblePerspectiveKeywords)
	return immersive == !accessible
}
