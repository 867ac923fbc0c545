// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package api provides the HTTP surface of the recommendation engine.

Routes are served by a chi router under /recommendation:

  - POST /search: anonymous recommendation turn
  - POST /personalized: turn blended with the caller's activity (JWT)
  - POST /continue/{conversationId}: follow-up turn
  - GET /examples: example queries for the search box
  - GET /health: collaborator readiness
  - GET /cache/stats: semantic keyword cache counters
  - POST /cache/refresh: reload keyword mappings (admin)
  - POST /admin/reindex: start a full catalog reindex (admin)
  - POST /admin/games/{id}/changed, DELETE /admin/games/{id}: publish
    catalog change events (admin)
  - GET /ws: websocket conversation channel

GET /metrics exposes Prometheus collectors.

Every JSON response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "request_id": "..."}}
	{"status": "error", "error": {"code": "SEARCH_ERROR", "message": "..."}, "metadata": {...}}

Only embedding and vector search failures reach the caller as pipeline
errors (502). Request validation failures are 400 VALIDATION_ERROR and
happen before any stage runs.
*/
package api
