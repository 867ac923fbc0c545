// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"strconv"
	"strings"

	"github.com/tomtom215/questline/internal/semantic"
)

// maxPlatformAliases bounds alias expansion per platform in the game text.
const maxPlatformAliases = 2

type keywordSection struct {
	label string
	limit int
	get   func(*GameInput) []string
}

var keywordSections = []keywordSection{
	{"Genre Characteristics", 5, func(g *GameInput) []string { return g.GenreKeywords }},
	{"Gameplay", 5, func(g *GameInput) []string { return g.MechanicKeywords }},
	{"Themes", 4, func(g *GameInput) []string { return g.ThemeKeywords }},
	{"Atmosphere", 4, func(g *GameInput) []string { return g.MoodKeywords }},
	{"Art Style", 3, func(g *GameInput) []string { return g.ArtStyleKeywords }},
	{"Target Audience", 3, func(g *GameInput) []string { return g.AudienceKeywords }},
	{"Platform Features", 3, func(g *GameInput) []string { return g.PlatformTypeKeywords }},
	{"Era", 2, func(g *GameInput) []string { return g.EraKeywords }},
	{"Capabilities", 3, func(g *GameInput) []string { return g.CapabilityKeywords }},
	{"Player Interaction", 3, func(g *GameInput) []string { return g.PlayerInteractionKeywords }},
	{"Scale", 2, func(g *GameInput) []string { return g.ScaleKeywords }},
	{"Communication", 2, func(g *GameInput) []string { return g.CommunicationKeywords }},
	{"Viewpoint", 2, func(g *GameInput) []string { return g.ViewpointKeywords }},
	{"Immersion", 2, func(g *GameInput) []string { return g.ImmersionKeywords }},
	{"Interface", 2, func(g *GameInput) []string { return g.InterfaceKeywords }},
}

// BuildGameText renders the structured description that is embedded for a
// game, e.g. "Game: Hades. Genres: Roguelike, Action. Released: 2020".
// Platforms are expanded with up to two aliases when aliases is non-nil.
func BuildGameText(in *GameInput, aliases *semantic.PlatformAliases) string {
	var sb strings.Builder
	sb.Grow(len(in.Name) + 256)

	sb.WriteString("Game: ")
	sb.WriteString(in.Name)

	writeList(&sb, "Genres", in.Genres, 0)
	writeList(&sb, "Platforms", expandPlatforms(in.Platforms, aliases), 0)
	writeList(&sb, "Game Modes", in.GameModes, 0)
	writeList(&sb, "Player Perspective", in.PlayerPerspectives, 0)
	writeList(&sb, "Companies", in.Companies, 0)

	if in.GameType != "" {
		sb.WriteString(". Game Type: ")
		sb.WriteString(in.GameType)
	}
	if in.ReleaseDate != nil {
		sb.WriteString(". Released: ")
		sb.WriteString(strconv.Itoa(in.ReleaseDate.Year()))
	}
	if in.Rating != nil {
		sb.WriteString(". Rating: ")
		sb.WriteString(strconv.FormatFloat(*in.Rating, 'f', 1, 64))
	}

	for _, s := range keywordSections {
		writeList(&sb, s.label, s.get(in), s.limit)
	}
	return sb.String()
}

// writeList appends ". Label: a, b" when values is non-empty. limit <= 0
// means no limit.
func writeList(sb *strings.Builder, label string, values []string, limit int) {
	if len(values) == 0 {
		return
	}
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	sb.WriteString(". ")
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(strings.Join(values, ", "))
}

func expandPlatforms(platforms []string, aliases *semantic.PlatformAliases) []string {
	if aliases == nil || aliases.Len() == 0 {
		return platforms
	}
	out := make([]string, 0, len(platforms)*(1+maxPlatformAliases))
	seen := make(map[string]struct{}, cap(out))
	add := func(s string) {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, p := range platforms {
		add(p)
		all := aliases.All(p)
		for i := 0; i < len(all) && i < maxPlatformAliases; i++ {
			add(all[i])
		}
	}
	return out
}
