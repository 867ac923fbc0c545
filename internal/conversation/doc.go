// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package conversation keeps multi-turn recommendation conversations in
// memory. The store is bounded by capacity (least recently used first out)
// and by an idle TTL that every access extends; a supervised sweeper calls
// Sweep periodically so idle conversations do not wait for the next access.
package conversation
