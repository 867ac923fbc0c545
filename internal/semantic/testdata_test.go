// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// fixtureMain is a small but complete main mappings file.
var fixtureMain = map[string]interface{}{
	"genreMappings": map[string]interface{}{
		"Action": map[string]interface{}{
			"genreKeywords":    []string{"action", "combat"},
			"mechanicKeywords": []string{"fast-paced"},
			"themeKeywords":    []string{"adventure"},
			"moodKeywords":     []string{"intense"},
			"audienceKeywords": []string{"mature"},
		},
		"Role-playing (RPG)": map[string]interface{}{
			"genreKeywords":    []string{"rpg"},
			"mechanicKeywords": []string{"leveling", "classic turn-based"},
			"themeKeywords":    []string{"adventure"},
			"moodKeywords":     []string{"epic"},
		},
		"Shooter": map[string]interface{}{
			"genreKeywords":    []string{"shooter"},
			"mechanicKeywords": []string{"aiming"},
			"themeKeywords":    []string{"military"},
			"moodKeywords":     []string{"intense"},
		},
		"Puzzle": map[string]interface{}{
			"genreKeywords":    []string{"puzzle"},
			"themeKeywords":    []string{"logic"},
			"moodKeywords":     []string{"relaxing"},
			"audienceKeywords": []string{"casual"},
		},
	},
	"platformMappings": map[string]interface{}{
		"PC (Microsoft Windows)": map[string]interface{}{
			"eraKeywords":          []string{"modern"},
			"platformTypeKeywords": []string{"desktop"},
			"capabilityKeywords":   []string{"mods"},
		},
		"Super Nintendo Entertainment System": map[string]interface{}{
			"eraKeywords":          []string{"retro"},
			"platformTypeKeywords": []string{"console"},
		},
	},
	"gameModeMappings": map[string]interface{}{
		"Multiplayer": map[string]interface{}{
			"playerInteractionKeywords": []string{"competitive"},
			"moodKeywords":              []string{"intense"},
			"audienceKeywords":          []string{"social"},
		},
	},
	"perspectiveMappings": map[string]interface{}{
		"First person": map[string]interface{}{
			"viewpointKeywords": []string{"first-person"},
			"immersionKeywords": []string{"immersive"},
			"moodKeywords":      []string{"tense"},
		},
	},
}

var fixtureAliases = map[string][]string{
	"PC (Microsoft Windows)":              {"PC", "Windows"},
	"PlayStation 5":                       {"PS5"},
	"Super Nintendo Entertainment System": {"SNES", "Super Nintendo"},
}

func writeJSON(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// fixtureDir writes the main mappings and alias files into a temp dir.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeJSON(t, dir, MainMappingsFile, fixtureMain)
	writeJSON(t, dir, PlatformAliasFile, fixtureAliases)
	return dir
}

type fakeSource struct {
	values map[string][]string
	err    error
}

func (f *fakeSource) DistinctCategoryValues(_ context.Context, category string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[category], nil
}

var errSourceDown = errors.New("catalog unavailable")

func newFixtureCache(t *testing.T, source CategorySource) (*ConfigService, *KeywordCache) {
	t.Helper()
	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	cache := NewKeywordCache(svc, source, zerolog.Nop())
	if err := cache.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return svc, cache
}
