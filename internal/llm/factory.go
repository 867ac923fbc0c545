// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package llm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/config"
	"github.com/tomtom215/questline/internal/semantic"
)

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI = "openai"
	ProviderRules  = "rules"
)

// New builds the configured model. The openai provider without an API key
// falls back to the rule-based model with a warning.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.LLMConfig, semanticConfig *semantic.ConfigService, logger zerolog.Logger) (LanguageModel, error) {
	switch cfg.Provider {
	case ProviderRules:
		return NewRuleBasedModel(semanticConfig), nil
	case "", ProviderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn().Msg("No language model API key configured, using rule-based query analysis")
			return NewRuleBasedModel(semanticConfig), nil
		}
		return NewOpenAIModel(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			RateLimit:   cfg.RateLimit,
			RateBurst:   cfg.RateBurst,
			CacheTTL:    cfg.CacheTTL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown language model provider %q", cfg.Provider)
	}
}
