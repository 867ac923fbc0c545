// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigService_MissingDirectoryFallsBack(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(filepath.Join(t.TempDir(), "absent"), zerolog.Nop())
	if svc.IsLoaded() {
		t.Fatal("expected service to be unloaded before first use")
	}

	cfg := svc.Config(context.Background())
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if !svc.IsLoaded() {
		t.Error("expected IsLoaded after first access")
	}
	if cfg.MappingCount() != 0 {
		t.Errorf("expected empty mappings, got %d", cfg.MappingCount())
	}
	if cfg.DefaultWeights != DefaultWeights() {
		t.Errorf("expected default weights, got %+v", cfg.DefaultWeights)
	}
	if cfg.Dimensions.Total != TotalDimensions {
		t.Errorf("expected %d dimensions, got %d", TotalDimensions, cfg.Dimensions.Total)
	}
	if len(svc.PlatformAliases(context.Background())) != 0 {
		t.Error("expected no platform aliases")
	}
}

func TestConfigService_PathIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRaw(t, dir, "not-a-dir", "x")
	svc := NewConfigService(filepath.Join(dir, "not-a-dir"), zerolog.Nop())

	if err := svc.Refresh(context.Background()); err == nil {
		t.Error("expected error for non-directory path")
	}
	if !svc.IsLoaded() {
		t.Error("expected fallback configuration to be published")
	}
	if svc.Config(context.Background()).MappingCount() != 0 {
		t.Error("expected empty fallback configuration")
	}
}

func TestConfigService_CanceledLoad(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("first load publishes defaults", func(t *testing.T) {
		t.Parallel()
		svc := NewConfigService(fixtureDir(t), zerolog.Nop())
		cfg := svc.Config(canceled)
		if !svc.IsLoaded() {
			t.Error("expected canceled first load to mark the service loaded")
		}
		if cfg.MappingCount() != 0 {
			t.Errorf("expected default configuration, got %d mappings", cfg.MappingCount())
		}
		if svc.Config(context.Background()) != cfg {
			t.Error("expected later callers to see the published defaults")
		}
	})

	t.Run("refresh keeps current configuration", func(t *testing.T) {
		t.Parallel()
		svc := NewConfigService(fixtureDir(t), zerolog.Nop())
		before := svc.Config(context.Background())
		if err := svc.Refresh(canceled); err == nil {
			t.Error("expected canceled refresh to report an error")
		}
		if svc.Config(context.Background()) != before {
			t.Error("expected canceled refresh to keep the loaded configuration")
		}
	})
}

func TestConfigService_SpecializedOverridesMain(t *testing.T) {
	t.Parallel()

	dir := fixtureDir(t)
	writeJSON(t, dir, GenreMappingsFile, map[string]interface{}{
		"Action": map[string]interface{}{"genreKeywords": []string{"brawler"}},
		"Racing": map[string]interface{}{"genreKeywords": []string{"racing"}},
	})

	svc := NewConfigService(dir, zerolog.Nop())
	cfg := svc.Config(context.Background())

	action := cfg.GenreMappings["Action"]
	if action == nil || len(action.GenreKeywords) != 1 || action.GenreKeywords[0] != "brawler" {
		t.Errorf("expected specialized Action mapping, got %+v", action)
	}
	if cfg.GenreMappings["Racing"] == nil {
		t.Error("expected Racing from specialized file")
	}
	if cfg.GenreMappings["Shooter"] == nil {
		t.Error("expected Shooter from main file to survive merge")
	}
}

func TestConfigService_MalformedFileSkipped(t *testing.T) {
	t.Parallel()

	dir := fixtureDir(t)
	writeRaw(t, dir, PlatformMappingsFile, `{"PC": [not json`)
	writeRaw(t, dir, GameModeMappingsFile, "   ")

	svc := NewConfigService(dir, zerolog.Nop())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("expected malformed specialized file to be skipped, got %v", err)
	}
	cfg := svc.Config(context.Background())
	if len(cfg.PlatformMappings) != 2 {
		t.Errorf("expected main platform mappings intact, got %d", len(cfg.PlatformMappings))
	}
}

func TestConfigService_MalformedMainFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRaw(t, dir, MainMappingsFile, `{"genreMappings": 12}`)
	writeJSON(t, dir, GenreMappingsFile, map[string]interface{}{
		"Puzzle": map[string]interface{}{"genreKeywords": []string{"puzzle"}},
	})

	cfg := NewConfigService(dir, zerolog.Nop()).Config(context.Background())
	if len(cfg.GenreMappings) != 1 || cfg.GenreMappings["Puzzle"] == nil {
		t.Errorf("expected only specialized Puzzle mapping, got %v", cfg.GenreMappings)
	}
}

func TestConfigService_InvalidWeightsAndDimensionsReset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSON(t, dir, MainMappingsFile, map[string]interface{}{
		"defaultWeights": map[string]interface{}{"genreWeight": 0.9, "moodWeight": -1},
		"dimensions":     map[string]interface{}{"total": 10},
	})

	cfg := NewConfigService(dir, zerolog.Nop()).Config(context.Background())
	if cfg.DefaultWeights.Genre != 0.9 {
		t.Errorf("expected configured genre weight 0.9, got %v", cfg.DefaultWeights.Genre)
	}
	if cfg.DefaultWeights.Mood != DefaultWeights().Mood {
		t.Errorf("expected default mood weight, got %v", cfg.DefaultWeights.Mood)
	}
	if cfg.Dimensions != DefaultDimensions() {
		t.Errorf("expected default dimensions, got %+v", cfg.Dimensions)
	}
}

func TestConfigService_RefreshSwapsValue(t *testing.T) {
	t.Parallel()

	dir := fixtureDir(t)
	svc := NewConfigService(dir, zerolog.Nop())
	before := svc.Config(context.Background())

	writeJSON(t, dir, GenreMappingsFile, map[string]interface{}{
		"Racing": map[string]interface{}{"genreKeywords": []string{"racing"}},
	})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	after := svc.Config(context.Background())

	if before == after {
		t.Error("expected refresh to publish a new value")
	}
	if before.GenreMappings["Racing"] != nil {
		t.Error("expected previous snapshot to stay unchanged")
	}
	if after.GenreMappings["Racing"] == nil {
		t.Error("expected refreshed snapshot to contain Racing")
	}
}

func TestConfigService_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	var wg sync.WaitGroup
	results := make([]*KeywordConfig, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Config(context.Background())
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result %d differs: expected a single load", i)
		}
	}
}

func TestConfigService_Aliases(t *testing.T) {
	t.Parallel()

	svc := NewConfigService(fixtureDir(t), zerolog.Nop())
	aliases := svc.Aliases(context.Background())
	if got := aliases.Canonical("ps5"); got != "PlayStation 5" {
		t.Errorf("expected PlayStation 5, got %q", got)
	}
	table := svc.PlatformAliases(context.Background())
	if len(table) != 3 {
		t.Errorf("expected 3 canonical platforms, got %d", len(table))
	}
}
