// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package main is the entry point for the Questline server.

Questline answers natural-language game requests ("cozy co-op games for
Switch from the last few years") with ranked, explained recommendations
drawn from a game catalog. Queries are analyzed by a language model,
embedded, searched in a vector store and scored against the caller's
favorites, likes and followed users.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("questline")
	├── DataSupervisor ("data-layer")
	│   ├── Keyword cache warmup (one-shot)
	│   ├── Reindex service (startup and cron reindexing)
	│   └── Conversation sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Game change event router (Watermill over GoChannel or NATS)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Database: DuckDB catalog and user activity, optionally seeded from JSON
 3. Semantic layer: keyword mappings and the category keyword cache
 4. Embedding service, vector store and language model
 5. Recommendation engine, indexer and change tracker
 6. Event bus for game change notifications
 7. Authentication (JWT) and authorization (Casbin)
 8. WebSocket hub, HTTP handlers and the Chi router

# Configuration

Common settings map to environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/questline.duckdb
	CATALOG_SEED=/data/games.json
	EMBEDDING_PROVIDER=hash|openai|sidecar
	VECTORDB_PROVIDER=memory|badger|qdrant
	LLM_PROVIDER=openai|rules
	GROQ_API_KEY=...
	EVENTS_BACKEND=gochannel|nats
	JWT_SECRET=...   # empty disables authentication

A config.yaml (or the file named by CONFIG_PATH) sets the same keys.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service, the HTTP server drains in-flight requests, and the event bus,
vector store and database are closed in that order.
*/
package main
