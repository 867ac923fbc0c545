// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/questline/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/questline.duckdb",
		},
		Semantic: SemanticConfig{
			ConfigDir:   "configs/semantic",
			WarmupDelay: 5 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Model:      "all-MiniLM-L6-v2",
			SidecarURL: "http://localhost:8001",
			Timeout:    10 * time.Second,
			CacheSize:  5000,
			CacheTTL:   time.Hour,
			BatchSize:  128,
		},
		VectorDB: VectorDBConfig{
			Provider:   "memory",
			Path:       "/data/vectors",
			URL:        "http://localhost:6333",
			Collection: "games",
			Timeout:    10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.1-8b-instant",
			Temperature: 0.7,
			MaxTokens:   500,
			Timeout:     8 * time.Second,
			RateLimit:   5,
			RateBurst:   10,
			CacheTTL:    10 * time.Minute,
		},
		Recommend: RecommendConfig{
			TurnTimeout:        30 * time.Second,
			AnalysisTimeout:    8 * time.Second,
			EmbeddingTimeout:   10 * time.Second,
			SearchTimeout:      5 * time.Second,
			ExplanationTimeout: 8 * time.Second,
			QueryWeight:        0.7,
			DefaultMaxResults:  10,
			FavoriteBoost:      0.2,
			LikedBoost:         0.1,
			FollowedBoost:      0.15,
			FollowUpConfidence: 0.7,
			DiversityLambda:    1.0,
		},
		Conversation: ConversationConfig{
			TTL:           30 * time.Minute,
			Capacity:      10000,
			SweepInterval: time.Minute,
		},
		Indexing: IndexingConfig{
			BatchSize:       50,
			OnStartup:       true,
			Schedule:        "",
			ChangeTopicBase: "game",
		},
		Events: EventsConfig{
			Backend:          "gochannel",
			NATSURL:          "nats://127.0.0.1:4222",
			EmbeddedPort:     4222,
			StoreDir:         "/data/nats",
			QueueGroup:       "questline",
			SubscribersCount: 1,
		},
	}
}

// Load builds the configuration from three layers, later layers winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. mapped environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.admin_users",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"admin_users":         "security.admin_users",

	"duckdb_path":    "database.path",
	"catalog_seed":   "database.seed_file",
	"semantic_dir":   "semantic.config_dir",
	"semantic_watch": "semantic.watch",
	"warmup_delay":   "semantic.warmup_delay",

	"embedding_provider":    "embedding.provider",
	"embedding_model":       "embedding.model",
	"embedding_base_url":    "embedding.base_url",
	"embedding_api_key":     "embedding.api_key",
	"embedding_sidecar_url": "embedding.sidecar_url",
	"embedding_cache_size":  "embedding.cache_size",
	"embedding_cache_ttl":   "embedding.cache_ttl",

	"vectordb_provider":   "vectordb.provider",
	"vectordb_path":       "vectordb.path",
	"qdrant_url":          "vectordb.url",
	"qdrant_api_key":      "vectordb.api_key",
	"vectordb_collection": "vectordb.collection",

	"llm_provider":   "llm.provider",
	"llm_base_url":   "llm.base_url",
	"llm_model":      "llm.model",
	"groq_api_key":   "llm.api_key",
	"llm_api_key":    "llm.api_key",
	"llm_timeout":    "llm.timeout",
	"llm_rate_limit": "llm.rate_limit",

	"recommend_turn_timeout":     "recommend.turn_timeout",
	"recommend_query_weight":     "recommend.query_weight",
	"recommend_diversity_lambda": "recommend.diversity_lambda",

	"conversation_ttl":      "conversation.ttl",
	"conversation_capacity": "conversation.capacity",

	"index_batch_size": "indexing.batch_size",
	"index_on_startup": "indexing.on_startup",
	"reindex_schedule": "indexing.schedule",

	"events_backend":   "events.backend",
	"nats_url":         "events.nats_url",
	"nats_embedded":    "events.embedded_server",
	"nats_store_dir":   "events.store_dir",
	"nats_jetstream":   "events.jetstream",
	"nats_queue_group": "events.queue_group",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchFile invokes callback whenever the file at path changes.
func WatchFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
