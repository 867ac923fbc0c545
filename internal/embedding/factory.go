// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"fmt"

	"github.com/tomtom215/questline/internal/config"
)

// Provider names accepted in embedding.provider.
const (
	ProviderHash    = "hash"
	ProviderOpenAI  = "openai"
	ProviderSidecar = "sidecar"
)

// NewEmbedder builds the configured text embedder.
func NewEmbedder(cfg *config.EmbeddingConfig) (TextEmbedder, error) {
	switch cfg.Provider {
	case "", ProviderHash:
		return NewHashEmbedder(), nil
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case ProviderSidecar:
		return NewSidecarEmbedder(SidecarConfig{
			BaseURL: cfg.SidecarURL,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
