// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/questline/internal/api"
	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/authz"
	"github.com/tomtom215/questline/internal/config"
	"github.com/tomtom215/questline/internal/conversation"
	"github.com/tomtom215/questline/internal/database"
	"github.com/tomtom215/questline/internal/embedding"
	"github.com/tomtom215/questline/internal/events"
	"github.com/tomtom215/questline/internal/llm"
	"github.com/tomtom215/questline/internal/logging"
	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/recommend/reranking"
	"github.com/tomtom215/questline/internal/semantic"
	"github.com/tomtom215/questline/internal/supervisor"
	"github.com/tomtom215/questline/internal/supervisor/services"
	"github.com/tomtom215/questline/internal/vectordb"
	ws "github.com/tomtom215/questline/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("embedding_provider", cfg.Embedding.Provider).
		Str("vectordb_provider", cfg.VectorDB.Provider).
		Str("llm_provider", cfg.LLM.Provider).
		Str("events_backend", cfg.Events.Backend).
		Msg("Starting Questline with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DATA STORES ===

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedFile != "" {
		seeded, err := db.SeedFromFile(ctx, cfg.Database.SeedFile)
		if err != nil {
			db.Close() //nolint:errcheck // exiting
			logging.Fatal().Err(err).Str("file", cfg.Database.SeedFile).Msg("Failed to seed catalog")
		}
		logging.Info().Int("games", seeded).Str("file", cfg.Database.SeedFile).Msg("Catalog seed processed")
	}

	vectorStore, err := vectordb.New(&cfg.VectorDB, logger)
	if err != nil {
		db.Close() //nolint:errcheck // exiting
		logging.Fatal().Err(err).Msg("Failed to open vector store")
	}
	defer func() {
		if err := vectorStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing vector store")
		}
	}()
	logging.Info().Str("backend", vectorStore.Name()).Str("collection", cfg.VectorDB.Collection).Msg("Vector store ready")

	// === SEMANTIC LAYER ===

	semanticConfig := semantic.NewConfigService(cfg.Semantic.ConfigDir, logger)
	keywordCache := semantic.NewKeywordCache(semanticConfig, db, logger)
	normalizer := semantic.NewNormalizer(keywordCache, semanticConfig)
	enhancer := semantic.NewQueryEnhancer(keywordCache)
	if cfg.Semantic.Watch {
		if err := semantic.Watch(semanticConfig, keywordCache); err != nil {
			logging.Warn().Err(err).Str("dir", cfg.Semantic.ConfigDir).Msg("Failed to watch keyword mappings, changes need a cache refresh")
		}
	}

	// === MODELS ===

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize embedder")
	}
	embeddings := embedding.NewService(embedder, embedding.Options{
		Cache:     embedding.NewCache(cfg.Embedding.CacheSize, cfg.Embedding.CacheTTL),
		Semantic:  semanticConfig,
		Keywords:  keywordCache,
		BatchSize: cfg.Embedding.BatchSize,
	}, logger)

	model, err := llm.New(&cfg.LLM, semanticConfig, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize language model")
	}
	logging.Info().Str("embedder", embeddings.Name()).Str("model", model.Name()).Msg("Models initialized")

	// === RECOMMENDATION ENGINE ===

	conversations := conversation.NewStore(conversation.Config{
		TTL:      cfg.Conversation.TTL,
		Capacity: cfg.Conversation.Capacity,
	}, logger)

	engine, err := recommend.NewEngine(recommend.ConfigFromApp(&cfg.Recommend, cfg.VectorDB.Collection), recommend.Deps{
		Model:         model,
		Embedder:      embeddings,
		Store:         vectorStore,
		Conversations: conversations,
		Preferences:   recommend.NewPreferenceService(db, logger),
		Normalizer:    normalizer,
		Enhancer:      enhancer,
		Keywords:      keywordCache,
		Semantic:      semanticConfig,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	if lambda := cfg.Recommend.DiversityLambda; lambda > 0 && lambda < 1 {
		engine.RegisterReranker(reranking.NewMMR(lambda))
		logging.Info().Float64("lambda", lambda).Msg("Diversity reranking enabled")
	}

	indexer := recommend.NewIndexer(db, embeddings, vectorStore, cfg.VectorDB.Collection, cfg.Indexing.BatchSize, logger)
	tracker := recommend.NewChangeTracker(indexer, logger)

	// === EVENTS ===

	topics := events.TopicsFor(cfg.Indexing.ChangeTopicBase)
	bus, err := events.NewBus(&cfg.Events, topics, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	publisher := events.NewPublisher(bus.Publisher, topics, logger)
	defer publisher.Close() //nolint:errcheck // never fails
	logging.Info().Str("backend", bus.Backend()).Str("topic", topics.Wildcard()).Msg("Event bus ready")

	// === SECURITY ===

	var jwtManager *auth.JWTManager
	if cfg.Security.AuthEnabled() {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Int("admins", len(cfg.Security.AdminUsers)).Msg("JWT authentication enabled")
	} else {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (JWT_SECRET unset)")
		logging.Warn().Msg("  Personalized and admin endpoints will reject every request.")
		logging.Warn().Msg("============================================================")
	}
	authn := auth.NewMiddleware(jwtManager, logger)

	enforcerConfig := authz.DefaultEnforcerConfig()
	enforcerConfig.AdminUsers = cfg.Security.AdminUsers
	enforcer, err := authz.NewEnforcer(enforcerConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	// === HTTP ===

	hub := ws.NewHub(logger)

	handler := api.NewHandler(api.HandlerDeps{
		Engine:      engine,
		Keywords:    keywordCache,
		Semantic:    semanticConfig,
		Indexer:     indexer,
		Publisher:   publisher,
		Hub:         hub,
		BaseContext: ctx,
		CORSOrigins: cfg.Security.CORSOrigins,
	}, logger)

	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		authn,
		authz.NewMiddleware(enforcer, logger),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	tree.AddDataService(services.NewWarmupService(keywordCache, cfg.Semantic.WarmupDelay, logger))
	tree.AddDataService(services.NewReindexService(indexer, services.ReindexServiceConfig{
		OnStartup: cfg.Indexing.OnStartup,
		Schedule:  cfg.Indexing.Schedule,
		OnComplete: func(run *recommend.IndexRun) {
			hub.Broadcast(ws.MessageTypeIndexCompleted, run)
		},
	}, logger))
	tree.AddDataService(services.NewSweeperService(conversations, cfg.Conversation.SweepInterval, logger))

	// Messaging layer services
	tree.AddMessagingService(hub)
	routerConfig := events.DefaultRouterConfig()
	tree.AddMessagingService(services.NewEventRouterService(func() (services.EventRouter, error) {
		r, err := events.NewRouter(&routerConfig, bus.Subscriber, topics, tracker, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}, logger))

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
