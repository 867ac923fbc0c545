// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package websocket provides the live conversation channel.

A browser keeps one websocket open and sends recommendation turns over it
instead of issuing a POST per turn. The hub also broadcasts catalog
maintenance events (reindex finished, semantic cache refreshed) to every
connected client.

Key Components:

  - Hub: tracks connected clients and broadcasts to them
  - Client: one connection with a read and a write goroutine
  - QueryHandler: answers "query" messages; the API layer implements it
    on top of the recommendation engine

Architecture:

	          ┌──────────┐
	          │   Hub    │ ← index_completed, cache_refreshed
	          └────┬─────┘
	     ┌─────────┼─────────┐
	     │         │         │
	 Client1   Client2   Client3
	     │
	     └─ query → QueryHandler → recommendation | error

Messages are JSON objects of the form {"type": ..., "data": ...}.

Client to server:

  - query: {"query": "...", "conversationId": "...", "maxResults": 5}
  - ping

Server to client:

  - recommendation: a recommendation response
  - error: {"code": "...", "message": "..."}
  - pong
  - index_completed, cache_refreshed

Turns on one connection are handled in order, so follow-up questions always
see the previous turn's conversation state.
*/
package websocket
