// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package vectordb stores game embeddings and answers cosine similarity
searches.

Three backends implement Store:

  - MemoryStore: brute-force search over an in-process map
  - BadgerStore: BadgerDB persistence with an in-memory search index
  - QdrantStore: a remote Qdrant server over its REST API

All backends share the same filter semantics. Keys ending in _from or _to
become numeric ranges that every hit must satisfy; any other key is a
comma-separated list of terms, at least one of which must appear in the
corresponding payload field. When a QueryAnalysis is supplied, hits whose
genres, platforms or game modes mention an extracted term get AnalysisBoost
added per matching category, and the analysis release range is applied
unless the filter already bounds release_year.

Vectors are normalized on write and on query, so scores are cosine
similarities (plus boosts).
*/
package vectordb
