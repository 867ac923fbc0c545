// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package recommend implements the conversational game recommendation
// pipeline.
//
// # Pipeline
//
// Every request moves through a fixed sequence of stages:
//
//	Received -> Analyzed -> Embedded -> Searched -> Scored -> Explained -> Delivered
//
//   - Analyzed: the language model extracts genres, platforms, game modes,
//     moods and a release range. Extracted terms are normalized against the
//     catalog vocabulary and the query is enriched with matching keywords.
//     Follow-up turns inherit categories the new query leaves open.
//   - Embedded: the enriched query is embedded. For authenticated callers
//     who opt in, the query vector is blended with an embedding of their
//     favorites, likes, liked reviews and lists, and followed users'
//     favorites.
//   - Searched: the vector store returns twice the requested number of
//     candidates, restricted to the extracted categories and release range.
//   - Scored: candidates are boosted for the caller's favorites, likes and
//     followed users' favorites, sorted and passed through any registered
//     rerankers (see the reranking subpackage).
//   - Explained: each game gets a reasoning line, the language model writes
//     the overall response and, for vague or thin results, follow-up
//     questions.
//   - Delivered: the conversation is updated and the response returned.
//
// # Degradation
//
// Only query embedding and vector search failures fail a request. Analysis,
// preference, activity and explanation failures fall back to unanalyzed
// queries, query-only vectors and generic text, and are counted in the
// questline_pipeline_degradations_total metric.
//
// # Indexing
//
// Indexer copies the game catalog into the vector store in batches, and
// ChangeTracker applies game.updated and game.deleted notifications to keep
// it current.
//
// # Thread Safety
//
// Engine, Indexer, ChangeTracker and PreferenceService are safe for
// concurrent use.
package recommend
