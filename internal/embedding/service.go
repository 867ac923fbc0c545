// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/metrics"
	"github.com/tomtom215/questline/internal/semantic"
)

// Limits on how much user activity feeds a preference vector.
const (
	prefFavoriteLimit = 10
	prefLikedLimit    = 10
	prefReviewLimit   = 20
	prefListLimit     = 10
	prefFollowedLimit = 20
)

// DefaultBatchSize is the number of texts sent per provider batch call.
const DefaultBatchSize = 128

// Options wires optional collaborators into a Service.
type Options struct {
	Cache *Cache
	// Semantic supplies weights, dimension ranges and platform aliases.
	// Nil uses the built-in defaults.
	Semantic *semantic.ConfigService
	// Keywords fills empty keyword lists of game inputs. Nil disables it.
	Keywords  *semantic.KeywordCache
	BatchSize int
}

// Service produces 384-dim, L2-normalized vectors for queries, games and
// user preferences.
type Service struct {
	embedder  TextEmbedder
	cache     *Cache
	semantic  *semantic.ConfigService
	keywords  *semantic.KeywordCache
	batchSize int
	logger    zerolog.Logger
}

// NewService creates an embedding service over embedder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(embedder TextEmbedder, opts Options, logger zerolog.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Service{
		embedder:  embedder,
		cache:     opts.Cache,
		semantic:  opts.Semantic,
		keywords:  opts.Keywords,
		batchSize: opts.BatchSize,
		logger:    logger.With().Str("component", "embedding").Str("provider", embedder.Name()).Logger(),
	}
}

// Name returns the provider name.
func (s *Service) Name() string {
	return s.embedder.Name()
}

// Dimensions returns the vector length.
func (s *Service) Dimensions() int {
	return Dimensions
}

// CacheLen returns the number of cached text vectors.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// Embedder exposes the underlying provider, e.g. for health checks.
func (s *Service) Embedder() TextEmbedder {
	return s.embedder
}

// GenerateEmbedding embeds free text such as a processed query.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.embedText(ctx, text)
}

// GenerateGameEmbedding embeds the structured game text, blends in summary
// and storyline, then injects category keywords into their dimension ranges.
func (s *Service) GenerateGameEmbedding(ctx context.Context, in *GameInput) ([]float32, error) {
	game, weights, dims := s.prepare(ctx, in)
	text := BuildGameText(&game, s.aliases(ctx))
	return s.compose(&game, text, weights, dims, func(t string) ([]float32, error) {
		return s.embedText(ctx, t)
	})
}

// GenerateUserPreferenceEmbedding averages the embeddings of a user's recent
// activity into one taste vector.
func (s *Service) GenerateUserPreferenceEmbedding(ctx context.Context, in *UserPreferenceInput) ([]float32, error) {
	if in.IsEmpty() {
		return nil, ErrEmptyPreferences
	}

	var vectors [][]float32
	addGames := func(games []GameInput, limit int) error {
		for i := 0; i < len(games) && i < limit; i++ {
			v, err := s.GenerateGameEmbedding(ctx, &games[i])
			if err != nil {
				return fmt.Errorf("embed game %q: %w", games[i].Name, err)
			}
			vectors = append(vectors, v)
		}
		return nil
	}
	addTexts := func(texts []string, limit int) error {
		for i := 0; i < len(texts) && i < limit; i++ {
			v, err := s.embedText(ctx, texts[i])
			if errors.Is(err, ErrEmptyText) {
				continue
			}
			if err != nil {
				return err
			}
			vectors = append(vectors, v)
		}
		return nil
	}

	if err := addGames(in.FavoriteGames, prefFavoriteLimit); err != nil {
		return nil, err
	}
	if err := addGames(in.LikedGames, prefLikedLimit); err != nil {
		return nil, err
	}
	if err := addTexts(in.LikedReviewTexts, prefReviewLimit); err != nil {
		return nil, err
	}
	if err := addTexts(in.LikedListDescriptions, prefListLimit); err != nil {
		return nil, err
	}
	if err := addGames(in.FollowedUsersFavorites, prefFollowedLimit); err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyPreferences
	}

	v := Normalize(Average(vectors))
	if err := Validate(v); err != nil {
		return nil, err
	}
	s.logger.Debug().Int("sources", len(vectors)).Msg("generated user preference embedding")
	return v, nil
}

// ProcessGamesInBatch embeds many games, sending uncached texts to the
// provider in chunks. The result is index-aligned with inputs.
func (s *Service) ProcessGamesInBatch(ctx context.Context, inputs []GameInput) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	type prepared struct {
		game    GameInput
		text    string
		weights semantic.Weights
		dims    semantic.Dimensions
	}
	aliases := s.aliases(ctx)
	games := make([]prepared, len(inputs))
	var texts []string
	for i := range inputs {
		g, w, d := s.prepare(ctx, &inputs[i])
		games[i] = prepared{game: g, text: BuildGameText(&g, aliases), weights: w, dims: d}
		texts = append(texts, games[i].text)
		if w.Summary > 0 && strings.TrimSpace(g.Summary) != "" {
			texts = append(texts, strings.TrimSpace(g.Summary))
		}
		if w.Storyline > 0 && strings.TrimSpace(g.Storyline) != "" {
			texts = append(texts, strings.TrimSpace(g.Storyline))
		}
	}

	vectors, err := s.embedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	lookup := func(t string) ([]float32, error) {
		v, ok := vectors[strings.TrimSpace(t)]
		if !ok {
			return nil, ErrEmptyText
		}
		return v, nil
	}

	out := make([][]float32, len(games))
	for i := range games {
		v, err := s.compose(&games[i].game, games[i].text, games[i].weights, games[i].dims, lookup)
		if err != nil {
			return nil, fmt.Errorf("embed game %q: %w", games[i].game.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

// embedText returns the normalized provider vector for text, via the cache.
func (s *Service) embedText(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if v, ok := s.cache.Get(text); ok {
		return v, nil
	}

	start := time.Now()
	v, err := s.embedder.Embed(ctx, text)
	metrics.RecordEmbedding(s.embedder.Name(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if err := Validate(v); err != nil {
		return nil, err
	}
	v = Normalize(clone(v))
	s.cache.Set(text, v)
	return v, nil
}

// embedTexts resolves a set of texts, batching cache misses.
func (s *Service) embedTexts(ctx context.Context, texts []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(texts))
	var missing []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if _, seen := out[t]; seen || t == "" {
			continue
		}
		if v, ok := s.cache.Get(t); ok {
			out[t] = v
			continue
		}
		out[t] = nil
		missing = append(missing, t)
	}

	for start := 0; start < len(missing); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk := missing[start:min(start+s.batchSize, len(missing))]

		began := time.Now()
		vs, err := s.embedder.EmbedBatch(ctx, chunk)
		metrics.RecordEmbedding(s.embedder.Name(), time.Since(began), err)
		if err != nil {
			return nil, fmt.Errorf("embed batch of %d: %w", len(chunk), err)
		}
		if len(vs) != len(chunk) {
			return nil, fmt.Errorf("embed batch: got %d vectors for %d texts", len(vs), len(chunk))
		}
		for i, v := range vs {
			if err := Validate(v); err != nil {
				return nil, err
			}
			v = Normalize(clone(v))
			s.cache.Set(chunk[i], v)
			out[chunk[i]] = v
		}
		s.logger.Debug().Int("texts", len(chunk)).Dur("duration", time.Since(began)).Msg("embedded batch")
	}

	for t, v := range out {
		if v == nil {
			delete(out, t)
		}
	}
	return out, nil
}

// compose turns the base text vector into the final game vector.
func (s *Service) compose(game *GameInput, text string, weights semantic.Weights, dims semantic.Dimensions,
	lookup func(string) ([]float32, error)) ([]float32, error) {
	base, err := lookup(text)
	if err != nil {
		return nil, err
	}
	v := clone(base)

	for _, part := range []struct {
		text   string
		weight float64
	}{
		{game.Summary, weights.Summary},
		{game.Storyline, weights.Storyline},
	} {
		if part.weight <= 0 || strings.TrimSpace(part.text) == "" {
			continue
		}
		pv, err := lookup(part.text)
		if errors.Is(err, ErrEmptyText) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for i := range v {
			v[i] = float32(float64(v[i])*(1-part.weight) + float64(pv[i])*part.weight)
		}
	}

	injectKeywords(v, game, weights, dims)
	v = Normalize(v)
	if err := Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// prepare copies in, fills empty keyword lists from the keyword cache and
// resolves weights and layout.
func (s *Service) prepare(ctx context.Context, in *GameInput) (GameInput, semantic.Weights, semantic.Dimensions) {
	game := *in
	weights, dims := semantic.DefaultWeights(), semantic.DefaultDimensions()
	if s.semantic != nil {
		cfg := s.semantic.Config(ctx)
		weights, dims = cfg.DefaultWeights, cfg.Dimensions
	}
	weights = resolveWeights(weights, game.Weights)

	if !game.hasCoreKeywords() && s.keywords != nil && s.keywords.IsInitialized() {
		fillKeywords(&game, s.keywords)
	}
	return game, weights, dims
}

// fillKeywords merges the cached mappings of the game's categories into its
// empty keyword lists.
func fillKeywords(game *GameInput, kc *semantic.KeywordCache) {
	merged := &semantic.CategoryMapping{}
	for _, g := range game.Genres {
		merged.Merge(kc.GenreKeywords(g))
	}
	for _, p := range game.Platforms {
		merged.Merge(kc.PlatformKeywords(p))
	}
	for _, m := range game.GameModes {
		merged.Merge(kc.GameModeKeywords(m))
	}
	for _, p := range game.PlayerPerspectives {
		merged.Merge(kc.PerspectiveKeywords(p))
	}

	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&game.GenreKeywords, merged.GenreKeywords)
	fill(&game.MechanicKeywords, merged.MechanicKeywords)
	fill(&game.ThemeKeywords, merged.ThemeKeywords)
	fill(&game.MoodKeywords, merged.MoodKeywords)
	fill(&game.ArtStyleKeywords, merged.ArtStyleKeywords)
	fill(&game.AudienceKeywords, merged.AudienceKeywords)
	fill(&game.PlatformTypeKeywords, merged.PlatformTypeKeywords)
	fill(&game.EraKeywords, merged.EraKeywords)
	fill(&game.CapabilityKeywords, merged.CapabilityKeywords)
	fill(&game.PlayerInteractionKeywords, merged.PlayerInteractionKeywords)
	fill(&game.ScaleKeywords, merged.ScaleKeywords)
	fill(&game.CommunicationKeywords, merged.CommunicationKeywords)
	fill(&game.ViewpointKeywords, merged.ViewpointKeywords)
	fill(&game.ImmersionKeywords, merged.ImmersionKeywords)
	fill(&game.InterfaceKeywords, merged.InterfaceKeywords)
}

func (s *Service) aliases(ctx context.Context) *semantic.PlatformAliases {
	if s.semantic == nil {
		return nil
	}
	return s.semantic.Aliases(ctx)
}
