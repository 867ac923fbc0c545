// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package events carries game catalog change notifications to the indexer.
//
// # Architecture
//
//	Admin API / catalog writer
//	        |
//	        v
//	Publisher (circuit breaker) --> Bus (gochannel | NATS) --> Router --> ChangeHandler
//	                                                                    (recommend.ChangeTracker)
//
// Two topics are used, derived from a configurable base (default "game"):
//
//   - game.updated: a game was created or changed and must be reindexed
//   - game.deleted: a game was removed and its vector must be dropped
//
// # Transports
//
// The gochannel backend delivers in-process and is the default for
// single-instance deployments. The nats backend connects to an external
// NATS server or starts an embedded one; with JetStream enabled a stream
// covering the change topics is created before publishers and subscribers
// attach.
//
// # Delivery
//
// The router retries a failing handler with exponential backoff. Messages
// that still fail, or that cannot be decoded, are logged and acknowledged so
// a single bad event never blocks the topic. A later full reindex repairs
// anything missed.
package events
