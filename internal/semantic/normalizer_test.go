// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestNormalizer_Canonical(t *testing.T) {
	t.Parallel()

	source := &fakeSource{values: map[string][]string{
		CategoryGenre:       {"Role-playing (RPG)", "Shooter", "Real Time Strategy (RTS)", "Point-and-click"},
		CategoryPlatform:    {"PC (Microsoft Windows)", "PlayStation 5"},
		CategoryGameMode:    {"Single player", "Multiplayer"},
		CategoryPerspective: {"First person"},
	}}
	svc, cache := newFixtureCache(t, source)
	n := NewNormalizer(cache, svc)
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		term     string
		want     string
	}{
		{"exact", CategoryGenre, "shooter", "Shooter"},
		{"name contains term", CategoryGenre, "RPG", "Role-playing (RPG)"},
		{"term contains name", CategoryGenre, "tactical shooter", "Shooter"},
		{"platform alias", CategoryPlatform, "PS5", "PlayStation 5"},
		{"abbreviation table", CategoryPerspective, "FP", "First person"},
		{"hyphen insensitive", CategoryGenre, "point and click", "Point-and-click"},
		{"hyphen variant", CategoryGameMode, "single-player", "Single player"},
		{"no match", CategoryGenre, "Racing", ""},
		{"blank", CategoryGenre, "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Canonical(ctx, tt.category, tt.term); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	svc, cache := newFixtureCache(t, catalogSource())
	n := NewNormalizer(cache, svc)

	got := n.Normalize(context.Background(), CategoryGenre, []string{"action", "ACTION", "rpg", "Racing", ""})
	want := []string{"Action", "Role-playing (RPG)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_NoKnownValuesPassesThrough(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(t.TempDir(), zerolog.Nop())
	cache := NewKeywordCache(svc, nil, zerolog.Nop())
	if err := cache.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	n := NewNormalizer(cache, svc)

	got := n.Normalize(context.Background(), CategoryGenre, []string{" Racing ", "racing"})
	if !reflect.DeepEqual(got, []string{"Racing"}) {
		t.Errorf("expected pass-through, got %v", got)
	}
}
