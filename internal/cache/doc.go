// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package cache provides the in-memory data structures shared by the
// recommendation components:
//
//   - LRU: a generic, capacity-bounded LRU with per-entry TTL. Backs the
//     embedding cache and the conversation store.
//   - KeywordMatcher: an Aho-Corasick automaton for finding many catalog
//     terms in free text in a single pass.
//
// All types are safe for concurrent use.
package cache
