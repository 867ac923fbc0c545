// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package semantic owns the keyword vocabulary that ties free-text queries to
catalog metadata.

Key Components:

  - ConfigService: loads SemanticKeywordMappings.json and the specialized
    genre, platform, game mode and perspective files, merging specialized
    entries over the main file. Missing or malformed files are skipped.
  - KeywordCache: precomputed per-item and pairwise combination mappings,
    published as immutable snapshots.
  - PlatformAliases: canonical platform names and their abbreviations.
  - Normalizer: maps model-extracted terms to catalog names.
  - QueryEnhancer: appends combination keywords to a processed query.

Lifecycle:

	svc := semantic.NewConfigService(dir, logger)
	cache := semantic.NewKeywordCache(svc, catalog, logger)
	if err := cache.Initialize(ctx); err != nil {
	    return err
	}
	m := cache.GenreKeywords("Shooter") // plain map read

Thread Safety:

Every type is safe for concurrent use. Refreshes build a complete new value
and swap it atomically; readers never block on a rebuild.
*/
package semantic
