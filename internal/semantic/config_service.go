// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Configuration file names inside the semantic config directory.
const (
	MainMappingsFile        = "SemanticKeywordMappings.json"
	GenreMappingsFile       = "GenreKeywordMappings.json"
	PlatformMappingsFile    = "PlatformKeywordMappings.json"
	GameModeMappingsFile    = "GameModeKeywordMappings.json"
	PerspectiveMappingsFile = "PlayerPerspectiveKeywordMappings.json"
	PlatformAliasFile       = "PlatformAlias.json"
)

// specializedFiles are merged over the main file in this order; on key
// collision the later file wins.
var specializedFiles = []struct {
	file     string
	category string
}{
	{GenreMappingsFile, CategoryGenre},
	{PlatformMappingsFile, CategoryPlatform},
	{GameModeMappingsFile, CategoryGameMode},
	{PerspectiveMappingsFile, CategoryPerspective},
}

type configSnapshot struct {
	config   *KeywordConfig
	aliases  *PlatformAliases
	loadedAt time.Time
}

// ConfigService loads and merges the keyword-mapping files. The first call
// to Config or PlatformAliases loads lazily; at most one load runs at a time
// and readers never observe a partially built configuration.
type ConfigService struct {
	dir    string
	logger zerolog.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[configSnapshot]
}

// NewConfigService creates a service reading from dir.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConfigService(dir string, logger zerolog.Logger) *ConfigService {
	return &ConfigService{
		dir:    dir,
		logger: logger.With().Str("component", "semantic_config").Logger(),
	}
}

// Dir returns the configuration directory.
func (s *ConfigService) Dir() string {
	return s.dir
}

// Config returns the merged configuration, loading it on first use.
// The result is never nil.
func (s *ConfigService) Config(ctx context.Context) *KeywordConfig {
	return s.ensureLoaded(ctx).config
}

// PlatformAliases returns the canonical -> aliases table.
func (s *ConfigService) PlatformAliases(ctx context.Context) map[string][]string {
	return s.ensureLoaded(ctx).aliases.Table()
}

// Aliases returns the indexed platform alias resolver.
func (s *ConfigService) Aliases(ctx context.Context) *PlatformAliases {
	return s.ensureLoaded(ctx).aliases
}

// IsLoaded reports whether a configuration (possibly the fallback) has been
// published.
func (s *ConfigService) IsLoaded() bool {
	return s.snapshot.Load() != nil
}

// LastLoaded returns when the current configuration was published.
func (s *ConfigService) LastLoaded() time.Time {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.loadedAt
	}
	return time.Time{}
}

// Refresh reloads every file and swaps the configuration. A failed load
// publishes the fallback default and returns the cause; a canceled one
// keeps the current configuration.
func (s *ConfigService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load(ctx)
	return err
}

func (s *ConfigService) ensureLoaded(ctx context.Context) *configSnapshot {
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}
	snap, _ := s.load(ctx)
	return snap
}

// load must be called with s.mu held.
func (s *ConfigService) load(ctx context.Context) (*configSnapshot, error) {
	start := time.Now()
	cfg, aliases, err := s.readAll(ctx)
	if err != nil && ctx.Err() != nil {
		// A canceled refresh keeps the current configuration. A canceled
		// first load still publishes the defaults so the service is loaded.
		if snap := s.snapshot.Load(); snap != nil {
			return snap, err
		}
		s.logger.Warn().Err(err).Str("dir", s.dir).Msg("semantic keyword configuration load canceled, using defaults")
		snap := &configSnapshot{
			config:   DefaultKeywordConfig(),
			aliases:  NewPlatformAliases(nil),
			loadedAt: time.Now(),
		}
		s.snapshot.Store(snap)
		return snap, err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Msg("failed to load semantic keyword configuration, using defaults")
		cfg = DefaultKeywordConfig()
		aliases = map[string][]string{}
	}

	snap := &configSnapshot{
		config:   cfg,
		aliases:  NewPlatformAliases(aliases),
		loadedAt: time.Now(),
	}
	s.snapshot.Store(snap)

	s.logger.Info().
		Int("mappings", cfg.MappingCount()).
		Int("platform_aliases", len(aliases)).
		Dur("duration", time.Since(start)).
		Msg("semantic keyword configuration loaded")
	return snap, err
}

func (s *ConfigService) readAll(ctx context.Context) (*KeywordConfig, map[string][]string, error) {
	if info, err := os.Stat(s.dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("stat config dir: %w", err)
		}
		s.logger.Warn().Str("dir", s.dir).Msg("semantic config directory not found")
	} else if !info.IsDir() {
		return nil, nil, fmt.Errorf("config path %s is not a directory", s.dir)
	}

	cfg := &KeywordConfig{}
	if !s.readFile(MainMappingsFile, cfg) {
		cfg = &KeywordConfig{}
	}
	cfg.ensureDefaults()

	for _, sf := range specializedFiles {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		var table map[string]*CategoryMapping
		if s.readFile(sf.file, &table) {
			cfg.merge(sf.category, table)
			s.logger.Debug().Str("file", sf.file).Int("count", len(table)).Msg("merged specialized mappings")
		}
	}

	aliases := map[string][]string{}
	if !s.readFile(PlatformAliasFile, &aliases) || aliases == nil {
		aliases = map[string][]string{}
	}
	return cfg, aliases, nil
}

// readFile decodes one optional JSON file into dst. Missing or empty files
// are logged as warnings, malformed ones as errors; both report false.
func (s *ConfigService) readFile(name string, dst interface{}) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the configured directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Str("file", path).Msg("semantic config file not found")
		} else {
			s.logger.Error().Err(err).Str("file", path).Msg("failed to read semantic config file")
		}
		return false
	}
	if strings.TrimSpace(string(data)) == "" {
		s.logger.Warn().Str("file", path).Msg("semantic config file is empty")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("malformed semantic config file")
		return false
	}
	return true
}
