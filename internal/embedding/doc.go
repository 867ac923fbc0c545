// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package embedding turns queries, games and user activity into fixed-length
vectors for similarity search.

Every vector is Dimensions (384) long and L2-normalized, so the dot product
of two vectors is their cosine similarity. Providers that return another
length fail with ErrDimensionMismatch.

# Game vectors

A game is rendered to a structured description (BuildGameText) and embedded
by the configured TextEmbedder. Summary and storyline are embedded
separately and blended in at their small text weights. Finally each
semantic category (genre, mechanics, theme, mood, art style, audience) owns
a fixed range of dimensions; its keywords are hashed to a value in [-1, 1]
and blended into that range with a weight that decays by 30% across it:

	w_i  = weight * (1 - 0.3*i/n)
	v[p] = v[p]*(1 - w_i) + value*w_i

# Providers

  - HashEmbedder: deterministic feature hashing, no network (default)
  - OpenAIEmbedder: any OpenAI-compatible /embeddings endpoint
  - SidecarEmbedder: the sentence-transformer HTTP sidecar

Provider results are cached by text in an LRU with TTL.
*/
package embedding
