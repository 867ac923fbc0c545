// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package config loads Questline configuration with koanf.
//
// Sources are layered: built-in defaults, then an optional YAML file
// (CONFIG_PATH, ./config.yaml, /etc/questline/config.yaml), then environment
// variables. Only the variables listed in envMappings are read, e.g.
//
//	HTTP_PORT=8080
//	GROQ_API_KEY=...          llm.api_key
//	VECTORDB_PROVIDER=qdrant  vectordb.provider
//	QDRANT_URL=http://qdrant:6333
//	REINDEX_SCHEDULE="0 3 * * *"
//
// Load validates the result and reports all problems at once.
package config
