// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func catalogSource() *fakeSource {
	return &fakeSource{values: map[string][]string{
		CategoryGenre:       {"Action", "Role-playing (RPG)", "Shooters", "Puzzle", "Sandbox", "action"},
		CategoryPlatform:    {"PC (Microsoft Windows)", "Super Nintendo Entertainment System"},
		CategoryGameMode:    {"Multiplayer"},
		CategoryPerspective: {"First person"},
	}}
}

func TestKeywordCache_UninitializedReturnsNil(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	cache := NewKeywordCache(svc, nil, zerolog.Nop())

	if cache.IsInitialized() {
		t.Error("expected cache to be uninitialized")
	}
	if cache.GenreKeywords("Action") != nil {
		t.Error("expected nil mapping before initialization")
	}
	if cache.CombinationKeywords("Action", "Shooter") != nil {
		t.Error("expected nil combination before initialization")
	}
	if cache.CachedGenres() != nil {
		t.Error("expected nil genre list before initialization")
	}
	if (cache.Stats() != CacheStats{}) {
		t.Error("expected zero stats before initialization")
	}
}

func TestKeywordCache_LookupsFromCatalog(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())

	tests := []struct {
		name     string
		lookup   func(string) *CategoryMapping
		item     string
		wantNil  bool
		keyword  string
	}{
		{"exact genre", cache.GenreKeywords, "Action", false, "action"},
		{"case-insensitive lookup", cache.GenreKeywords, "ROLE-PLAYING (RPG)", false, "rpg"},
		{"fuzzy resolved catalog value", cache.GenreKeywords, "Shooters", false, "shooter"},
		{"unmapped catalog value", cache.GenreKeywords, "Sandbox", true, ""},
		{"unknown value", cache.GenreKeywords, "Racing", true, ""},
		{"config key absent from catalog", cache.GenreKeywords, "Shooter", true, ""},
		{"platform", cache.PlatformKeywords, "PC (Microsoft Windows)", false, ""},
		{"game mode", cache.GameModeKeywords, "multiplayer", false, ""},
		{"perspective", cache.PerspectiveKeywords, "First person", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.lookup(tt.item)
			if tt.wantNil {
				if m != nil {
					t.Errorf("expected nil, got %+v", m)
				}
				return
			}
			if m == nil {
				t.Fatal("expected mapping, got nil")
			}
			if tt.keyword != "" && !containsFold(m.GenreKeywords, tt.keyword) {
				t.Errorf("expected genre keyword %q in %v", tt.keyword, m.GenreKeywords)
			}
		})
	}
}

func TestKeywordCache_ReferenceEqualLookups(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())
	a := cache.GenreKeywords("Action")
	b := cache.GenreKeywords("action")
	if a == nil || a != b {
		t.Error("expected repeated lookups to return the same mapping")
	}
	c1 := cache.CombinationKeywords("Action", "Role-playing (RPG)")
	c2 := cache.CombinationKeywords("Action", "Role-playing (RPG)")
	if c1 == nil || c1 != c2 {
		t.Error("expected repeated combination lookups to return the same mapping")
	}
}

func TestKeywordCache_CachedLists(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())

	want := []string{"Action", "Puzzle", "Role-playing (RPG)", "Shooters"}
	if got := cache.CachedGenres(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := cache.CachedPlatforms(); len(got) != 2 {
		t.Errorf("expected 2 platforms, got %v", got)
	}
	if got := cache.KnownValues(CategoryGenre); len(got) != 5 {
		t.Errorf("expected 5 known genres (deduplicated), got %v", got)
	}

	stats := cache.Stats()
	if stats.TotalGenres != 4 {
		t.Errorf("expected 4 mapped genres (Sandbox has no mapping), got %d", stats.TotalGenres)
	}
	if stats.TotalPlatforms != 2 || stats.TotalGameModes != 1 || stats.TotalPerspectives != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalKeywords == 0 || stats.LastInitialized.IsZero() {
		t.Errorf("expected populated stats, got %+v", stats)
	}
}

func TestKeywordCache_Combinations(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())

	tests := []struct {
		name    string
		a, b    string
		wantNil bool
	}{
		{"shared theme genres", "Action", "Role-playing (RPG)", false},
		{"reversed order", "Role-playing (RPG)", "Action", false},
		{"modern platform with genre", "PC (Microsoft Windows)", "Puzzle", false},
		{"retro platform with classic mechanics", "Super Nintendo Entertainment System", "Role-playing (RPG)", false},
		{"retro platform without classic mechanics", "Super Nintendo Entertainment System", "Action", true},
		{"game mode sharing mood", "Multiplayer", "Action", false},
		{"game mode without overlap", "Multiplayer", "Puzzle", true},
		{"immersive perspective with non-casual genre", "First person", "Shooters", false},
		{"immersive perspective with casual genre", "First person", "Puzzle", true},
		{"unrelated genres", "Puzzle", "Shooters", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cache.CombinationKeywords(tt.a, tt.b)
			if tt.wantNil && m != nil {
				t.Errorf("expected no combination, got %+v", m)
			}
			if !tt.wantNil {
				if m == nil {
					t.Fatal("expected combination mapping")
				}
				if m.KeywordCount() < minCombinationKeywords {
					t.Errorf("expected at least %d keywords, got %d", minCombinationKeywords, m.KeywordCount())
				}
			}
		})
	}

	merged := cache.CombinationKeywords("Action", "Role-playing (RPG)")
	if !containsFold(merged.GenreKeywords, "action") || !containsFold(merged.GenreKeywords, "rpg") {
		t.Errorf("expected merged genre keywords, got %v", merged.GenreKeywords)
	}
	if n := len(merged.ThemeKeywords); n != 1 {
		t.Errorf("expected shared theme keyword once, got %d", n)
	}
}

func TestKeywordCache_RefreshIdempotent(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())
	first := cache.snap.Load()

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	second := cache.snap.Load()

	if first == second {
		t.Fatal("expected refresh to publish a new snapshot")
	}
	if !reflect.DeepEqual(first.mappings, second.mappings) {
		t.Error("expected equal per-item mappings after refresh")
	}
	if !reflect.DeepEqual(first.combinations, second.combinations) {
		t.Error("expected equal combinations after refresh")
	}
	if !reflect.DeepEqual(first.lists, second.lists) {
		t.Error("expected equal lists after refresh")
	}
}

func TestKeywordCache_FallsBackToConfigKeys(t *testing.T) {
	t.Parallel()

	for _, source := range []CategorySource{nil, &fakeSource{}, &fakeSource{err: errSourceDown}} {
		_, cache := newFixtureCache(t, source)
		if cache.GenreKeywords("Shooter") == nil {
			t.Errorf("source %T: expected config key Shooter to be cached", source)
		}
		if got := len(cache.CachedGenres()); got != 4 {
			t.Errorf("source %T: expected 4 genres, got %d", source, got)
		}
	}
}

func TestKeywordCache_EnsureInitialized(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	cache := NewKeywordCache(svc, nil, zerolog.Nop())

	if err := cache.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	snap := cache.snap.Load()
	if err := cache.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	if cache.snap.Load() != snap {
		t.Error("expected second EnsureInitialized to be a no-op")
	}
}

func TestKeywordCache_ConcurrentReadsDuringRefresh(t *testing.T) {
	t.Parallel()

	_, cache := newFixtureCache(t, catalogSource())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if cache.GenreKeywords("Action") == nil {
					t.Error("expected mapping during refresh")
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if err := cache.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
	}
	wg.Wait()
}

func TestKeywordCache_CanceledContext(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	cache := NewKeywordCache(svc, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Initialize(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
	if cache.IsInitialized() {
		t.Error("expected no snapshot after canceled build")
	}
}
