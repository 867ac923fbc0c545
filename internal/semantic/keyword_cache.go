// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/metrics"
)

// CategorySource supplies the distinct catalog values of a category.
// The catalog store implements it.
type CategorySource interface {
	DistinctCategoryValues(ctx context.Context, category string) ([]string, error)
}

// CacheStats summarizes the current keyword cache snapshot.
type CacheStats struct {
	TotalGenres        int           `json:"totalGenres"`
	TotalPlatforms     int           `json:"totalPlatforms"`
	TotalGameModes     int           `json:"totalGameModes"`
	TotalPerspectives  int           `json:"totalPerspectives"`
	TotalCombinations  int           `json:"totalCombinations"`
	TotalKeywords      int64         `json:"totalKeywords"`
	LastInitialized    time.Time     `json:"lastInitialized"`
	InitializationTime time.Duration `json:"initializationTime"`
}

type cacheSnapshot struct {
	mappings     map[string]map[string]*CategoryMapping // category -> lowercased item -> mapping
	lists        map[string][]string                    // category -> sorted cached item names
	known        map[string][]string                    // category -> every source value
	combinations map[string]*CategoryMapping
	stats        CacheStats
}

// KeywordCache precomputes keyword mappings for every catalog genre,
// platform, game mode and perspective, plus selected pairwise
// combinations. Lookups are plain map reads against an immutable snapshot;
// a refresh builds a new snapshot and swaps it in.
type KeywordCache struct {
	config *ConfigService
	source CategorySource
	logger zerolog.Logger

	buildMu sync.Mutex
	snap    atomic.Pointer[cacheSnapshot]
}

// NewKeywordCache creates an uninitialized cache. source may be nil, in
// which case the configuration keys are used as the item lists.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewKeywordCache(config *ConfigService, source CategorySource, logger zerolog.Logger) *KeywordCache {
	return &KeywordCache{
		config: config,
		source: source,
		logger: logger.With().Str("component", "keyword_cache").Logger(),
	}
}

// Initialize builds and publishes a snapshot.
func (c *KeywordCache) Initialize(ctx context.Context) error {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	return c.build(ctx)
}

// EnsureInitialized builds a snapshot only when none is published.
func (c *KeywordCache) EnsureInitialized(ctx context.Context) error {
	if c.IsInitialized() {
		return nil
	}
	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	if c.IsInitialized() {
		return nil
	}
	return c.build(ctx)
}

// Refresh rebuilds the snapshot. Readers keep the previous snapshot until
// the new one is complete.
func (c *KeywordCache) Refresh(ctx context.Context) error {
	return c.Initialize(ctx)
}

// IsInitialized reports whether a snapshot is published.
func (c *KeywordCache) IsInitialized() bool {
	return c.snap.Load() != nil
}

// Stats returns statistics of the current snapshot.
func (c *KeywordCache) Stats() CacheStats {
	if s := c.snap.Load(); s != nil {
		return s.stats
	}
	return CacheStats{}
}

// GenreKeywords returns the mapping for a genre, or nil.
func (c *KeywordCache) GenreKeywords(genre string) *CategoryMapping {
	return c.lookup(CategoryGenre, genre)
}

// PlatformKeywords returns the mapping for a platform, or nil.
func (c *KeywordCache) PlatformKeywords(platform string) *CategoryMapping {
	return c.lookup(CategoryPlatform, platform)
}

// GameModeKeywords returns the mapping for a game mode, or nil.
func (c *KeywordCache) GameModeKeywords(mode string) *CategoryMapping {
	return c.lookup(CategoryGameMode, mode)
}

// PerspectiveKeywords returns the mapping for a player perspective, or nil.
func (c *KeywordCache) PerspectiveKeywords(perspective string) *CategoryMapping {
	return c.lookup(CategoryPerspective, perspective)
}

// CombinationKeywords returns the merged mapping cached for the pair, in
// either order, or nil.
func (c *KeywordCache) CombinationKeywords(a, b string) *CategoryMapping {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	if m, ok := s.combinations[CombinationKey(a, b)]; ok {
		return m
	}
	return s.combinations[CombinationKey(b, a)]
}

// CachedGenres returns the sorted genres holding a mapping.
func (c *KeywordCache) CachedGenres() []string { return c.list(CategoryGenre) }

// CachedPlatforms returns the sorted platforms holding a mapping.
func (c *KeywordCache) CachedPlatforms() []string { return c.list(CategoryPlatform) }

// CachedGameModes returns the sorted game modes holding a mapping.
func (c *KeywordCache) CachedGameModes() []string { return c.list(CategoryGameMode) }

// CachedPerspectives returns the sorted perspectives holding a mapping.
func (c *KeywordCache) CachedPerspectives() []string { return c.list(CategoryPerspective) }

// KnownValues returns every value of a category seen at build time, mapped
// or not.
func (c *KeywordCache) KnownValues(category string) []string {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return append([]string(nil), s.known[category]...)
}

// CombinationKey builds the cache key of a pair, e.g. "action_rpg".
func CombinationKey(a, b string) string {
	return strings.ToLower(strings.TrimSpace(a)) + "_" + strings.ToLower(strings.TrimSpace(b))
}

func (c *KeywordCache) lookup(category, item string) *CategoryMapping {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return s.mappings[category][strings.ToLower(strings.TrimSpace(item))]
}

func (c *KeywordCache) list(category string) []string {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return append([]string(nil), s.lists[category]...)
}

// build must be called with buildMu held.
func (c *KeywordCache) build(ctx context.Context) error {
	start := time.Now()
	cfg := c.config.Config(ctx)

	items := c.sourceItems(ctx, cfg)
	if err := ctx.Err(); err != nil {
		return err
	}

	s := &cacheSnapshot{
		mappings:     make(map[string]map[string]*CategoryMapping, len(Categories)),
		lists:        make(map[string][]string, len(Categories)),
		known:        items,
		combinations: make(map[string]*CategoryMapping),
	}

	var total int64
	for _, cat := range Categories {
		resolved := make(map[string]*CategoryMapping)
		var names []string
		table := cfg.Mappings(cat)
		index := lowerIndex(table)
		for _, item := range items[cat] {
			m := resolveMapping(item, table, index)
			if m == nil {
				continue
			}
			key := strings.ToLower(item)
			if _, dup := resolved[key]; dup {
				continue
			}
			resolved[key] = m
			names = append(names, item)
			total += int64(m.KeywordCount())
		}
		sortFold(names)
		s.mappings[cat] = resolved
		s.lists[cat] = names
	}

	for _, pair := range generateCombinations(s) {
		merged := &CategoryMapping{}
		merged.Merge(s.mappings[pair.catA][strings.ToLower(pair.a)])
		merged.Merge(s.mappings[pair.catB][strings.ToLower(pair.b)])
		if merged.KeywordCount() < minCombinationKeywords {
			continue
		}
		s.combinations[CombinationKey(pair.a, pair.b)] = merged
		total += int64(merged.KeywordCount())
	}

	s.stats = CacheStats{
		TotalGenres:        len(s.mappings[CategoryGenre]),
		TotalPlatforms:     len(s.mappings[CategoryPlatform]),
		TotalGameModes:     len(s.mappings[CategoryGameMode]),
		TotalPerspectives:  len(s.mappings[CategoryPerspective]),
		TotalCombinations:  len(s.combinations),
		TotalKeywords:      total,
		LastInitialized:    time.Now(),
		InitializationTime: time.Since(start),
	}
	c.snap.Store(s)

	metrics.RecordKeywordCache(
		s.stats.TotalGenres, s.stats.TotalPlatforms, s.stats.TotalGameModes,
		s.stats.TotalPerspectives, s.stats.TotalCombinations, s.stats.InitializationTime,
	)
	c.logger.Info().
		Int("genres", s.stats.TotalGenres).
		Int("platforms", s.stats.TotalPlatforms).
		Int("game_modes", s.stats.TotalGameModes).
		Int("perspectives", s.stats.TotalPerspectives).
		Int("combinations", s.stats.TotalCombinations).
		Int64("keywords", total).
		Dur("duration", s.stats.InitializationTime).
		Msg("semantic keyword cache initialized")
	return nil
}

// sourceItems reads catalog values for each category. When the catalog
// yields nothing at all the configuration keys are used instead.
func (c *KeywordCache) sourceItems(ctx context.Context, cfg *KeywordConfig) map[string][]string {
	items := make(map[string][]string, len(Categories))
	found := 0
	if c.source != nil {
		for _, cat := range Categories {
			values, err := c.source.DistinctCategoryValues(ctx, cat)
			if err != nil {
				c.logger.Warn().Err(err).Str("category", cat).Msg("failed to read catalog values")
				continue
			}
			items[cat] = dedupeSorted(values)
			found += len(items[cat])
		}
	}
	if found > 0 {
		return items
	}

	for _, cat := range Categories {
		keys := make([]string, 0, len(cfg.Mappings(cat)))
		for k := range cfg.Mappings(cat) {
			keys = append(keys, k)
		}
		items[cat] = dedupeSorted(keys)
	}
	c.logger.Info().Msg("catalog empty or unavailable, using configuration keys for keyword cache")
	return items
}

// resolveMapping finds the mapping for an item: exact key first, then a
// case-insensitive key, then the best fuzzy match.
func resolveMapping(item string, table map[string]*CategoryMapping, index map[string]string) *CategoryMapping {
	if m, ok := table[item]; ok {
		return m
	}
	if key, ok := index[strings.ToLower(strings.TrimSpace(item))]; ok {
		return table[key]
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	if best := BestFuzzyMatch(item, keys); best != "" {
		return table[best]
	}
	return nil
}

func lowerIndex(table map[string]*CategoryMapping) map[string]string {
	idx := make(map[string]string, len(table))
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, ok := idx[lk]; !ok {
			idx[lk] = k
		}
	}
	return idx
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sortFold(out)
	return out
}

func sortFold(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		li, lj := strings.ToLower(values[i]), strings.ToLower(values[j])
		if li != lj {
			return li < lj
		}
		return values[i] < values[j]
	})
}
