// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration and returns every problem found, joined.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateLogging(),
		c.validateSecurity(),
		c.validateEmbedding(),
		c.validateVectorDB(),
		c.validateLLM(),
		c.validateRecommend(),
		c.validateConversation(),
		c.validateIndexing(),
		c.validateEvents(),
	)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Server.Environment == "production" {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case "hash":
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("EMBEDDING_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case "sidecar":
		if err := validateHTTPURL(c.Embedding.SidecarURL, "EMBEDDING_SIDECAR_URL"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be hash, openai or sidecar, got %q", c.Embedding.Provider)
	}
	if c.Embedding.CacheSize < 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must not be negative")
	}
	return nil
}

func (c *Config) validateVectorDB() error {
	if c.VectorDB.Collection == "" {
		return fmt.Errorf("VECTORDB_COLLECTION is required")
	}
	switch c.VectorDB.Provider {
	case "memory":
		return nil
	case "badger":
		if c.VectorDB.Path == "" {
			return fmt.Errorf("VECTORDB_PATH is required when VECTORDB_PROVIDER=badger")
		}
		return nil
	case "qdrant":
		return validateHTTPURL(c.VectorDB.URL, "QDRANT_URL")
	default:
		return fmt.Errorf("VECTORDB_PROVIDER must be memory, badger or qdrant, got %q", c.VectorDB.Provider)
	}
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "rules":
		return nil
	case "openai":
		if _, err := url.Parse(c.LLM.BaseURL); err != nil || c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is invalid: %q", c.LLM.BaseURL)
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			return fmt.Errorf("llm.temperature must be between 0 and 2")
		}
		return nil
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or rules, got %q", c.LLM.Provider)
	}
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.QueryWeight < 0 || r.QueryWeight > 1 {
		return fmt.Errorf("RECOMMEND_QUERY_WEIGHT must be between 0 and 1, got %v", r.QueryWeight)
	}
	if r.DiversityLambda < 0 || r.DiversityLambda > 1 {
		return fmt.Errorf("RECOMMEND_DIVERSITY_LAMBDA must be between 0 and 1, got %v", r.DiversityLambda)
	}
	if r.DefaultMaxResults < 1 || r.DefaultMaxResults > 50 {
		return fmt.Errorf("recommend.default_max_results must be between 1 and 50")
	}
	if r.TurnTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TURN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateConversation() error {
	if c.Conversation.TTL <= 0 {
		return fmt.Errorf("CONVERSATION_TTL must be positive")
	}
	if c.Conversation.Capacity <= 0 {
		return fmt.Errorf("CONVERSATION_CAPACITY must be positive")
	}
	return nil
}

func (c *Config) validateIndexing() error {
	if c.Indexing.BatchSize <= 0 {
		return fmt.Errorf("INDEX_BATCH_SIZE must be positive")
	}
	if c.Indexing.Schedule != "" {
		if _, err := cron.ParseStandard(c.Indexing.Schedule); err != nil {
			return fmt.Errorf("REINDEX_SCHEDULE is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case "gochannel":
		return nil
	case "nats":
		if c.Events.EmbeddedServer {
			return nil
		}
		return validateNATSURL(c.Events.NATSURL)
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
}

// validateHTTPURL requires an http(s) base URL with a host.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("NATS_URL failed to parse: %w", err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("NATS_URL scheme must be nats, tls, ws, or wss, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("NATS_URL host is required")
	}
	return nil
}
