// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Security     SecurityConfig     `koanf:"security"`
	Database     DatabaseConfig     `koanf:"database"`
	Semantic     SemanticConfig     `koanf:"semantic"`
	Embedding    EmbeddingConfig    `koanf:"embedding"`
	VectorDB     VectorDBConfig     `koanf:"vectordb"`
	LLM          LLMConfig          `koanf:"llm"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Conversation ConversationConfig `koanf:"conversation"`
	Indexing     IndexingConfig     `koanf:"indexing"`
	Events       EventsConfig       `koanf:"events"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds token validation, CORS and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret validates bearer tokens for personalized and admin routes.
	// Empty disables authentication entirely: every caller is anonymous.
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	// AdminUsers are granted the admin role by the authorization policy.
	AdminUsers []string `koanf:"admin_users"`
}

// DatabaseConfig configures the DuckDB catalog and activity store.
type DatabaseConfig struct {
	// Path is the DuckDB file; empty runs in memory.
	Path string `koanf:"path"`
	// SeedFile is an optional JSON catalog loaded when the games table is empty.
	SeedFile string `koanf:"seed_file"`
}

// SemanticConfig locates the keyword-mapping JSON files.
type SemanticConfig struct {
	ConfigDir   string        `koanf:"config_dir"`
	Watch       bool          `koanf:"watch"`
	WarmupDelay time.Duration `koanf:"warmup_delay"`
}

// EmbeddingConfig selects and tunes the text embedder.
type EmbeddingConfig struct {
	// Provider is one of: hash, openai, sidecar.
	Provider   string        `koanf:"provider"`
	Model      string        `koanf:"model"`
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	SidecarURL string        `koanf:"sidecar_url"`
	Timeout    time.Duration `koanf:"timeout"`
	CacheSize  int           `koanf:"cache_size"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
	BatchSize  int           `koanf:"batch_size"`
}

// VectorDBConfig selects the vector store backend.
type VectorDBConfig struct {
	// Provider is one of: memory, badger, qdrant.
	Provider   string        `koanf:"provider"`
	Path       string        `koanf:"path"`
	URL        string        `koanf:"url"`
	APIKey     string        `koanf:"api_key"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

// LLMConfig configures the language model client.
type LLMConfig struct {
	// Provider is openai (any OpenAI-compatible endpoint, Groq by default)
	// or rules. openai without an API key falls back to rules.
	Provider    string        `koanf:"provider"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	APIKey      string        `koanf:"api_key"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
	RateLimit   float64       `koanf:"rate_limit"`
	RateBurst   int           `koanf:"rate_burst"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig tunes the recommendation pipeline.
type RecommendConfig struct {
	TurnTimeout        time.Duration `koanf:"turn_timeout"`
	AnalysisTimeout    time.Duration `koanf:"analysis_timeout"`
	EmbeddingTimeout   time.Duration `koanf:"embedding_timeout"`
	SearchTimeout      time.Duration `koanf:"search_timeout"`
	ExplanationTimeout time.Duration `koanf:"explanation_timeout"`
	QueryWeight        float64       `koanf:"query_weight"`
	DefaultMaxResults  int           `koanf:"default_max_results"`
	FavoriteBoost      float64       `koanf:"favorite_boost"`
	LikedBoost         float64       `koanf:"liked_boost"`
	FollowedBoost      float64       `koanf:"followed_boost"`
	FollowUpConfidence float64       `koanf:"follow_up_confidence"`
	// DiversityLambda trades relevance for genre diversity; 1 disables reranking.
	DiversityLambda float64 `koanf:"diversity_lambda"`
}

// ConversationConfig bounds the conversation store.
type ConversationConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	Capacity      int           `koanf:"capacity"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// IndexingConfig controls catalog indexing into the vector store.
type IndexingConfig struct {
	BatchSize       int    `koanf:"batch_size"`
	OnStartup       bool   `koanf:"on_startup"`
	Schedule        string `koanf:"schedule"`
	ChangeTopicBase string `koanf:"change_topic_base"`
}

// EventsConfig selects the game change event transport.
type EventsConfig struct {
	// Backend is gochannel (in-process) or nats.
	Backend          string `koanf:"backend"`
	NATSURL          string `koanf:"nats_url"`
	EmbeddedServer   bool   `koanf:"embedded_server"`
	EmbeddedPort     int    `koanf:"embedded_port"`
	StoreDir         string `koanf:"store_dir"`
	JetStream        bool   `koanf:"jetstream"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// AuthEnabled reports whether bearer tokens are validated.
func (s SecurityConfig) AuthEnabled() bool {
	return s.JWTSecret != ""
}
