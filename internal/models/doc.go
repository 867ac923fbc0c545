// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package models defines data structures shared across Questline packages.

Key Components:

  - APIResponse, APIError, Metadata: the HTTP response envelope
  - Game: catalog entry indexed into the vector store
  - User, Favorite, GameLike, Review, ReviewLike, GameList, GameListLike,
    Follow: the social activity the recommendation core reads for
    personalization

Pipeline-specific types (query analysis, recommendations, conversation state)
live next to the code that produces them.
*/
package models
