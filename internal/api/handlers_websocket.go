// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/websocket"
)

// getUpgrader returns a websocket upgrader whose origin check follows the
// CORS allow list. Requests without an Origin header (non-browser clients)
// and same-host origins are always accepted.
func (h *Handler) getUpgrader() *gorillaws.Upgrader {
	return &gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.corsOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return strings.EqualFold(u.Host, r.Host)
		},
	}
}

// WebSocket handles GET /recommendation/ws.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "websocket not configured", nil)
		return
	}

	conn, err := h.getUpgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	userID := auth.UserID(r.Context())
	websocket.NewClient(h.hub, conn, h, userID).Start(h.baseCtx)
}

// HandleQuery implements websocket.QueryHandler. Turns with a conversation
// id continue that conversation; others start a new one.
func (h *Handler) HandleQuery(ctx context.Context, userID string, q *websocket.QueryMessage) websocket.Message {
	req := recommend.NewRequest(q.Query)
	req.ConversationID = strings.TrimSpace(q.ConversationID)
	req.MaxResults = q.MaxResults
	if q.IncludeFollowedUsersPreferences != nil {
		req.IncludeFollowedUsersPreferences = *q.IncludeFollowedUsersPreferences
	}

	var caller *recommend.Caller
	if userID != "" {
		caller = &recommend.Caller{UserID: userID}
	}

	var (
		resp *recommend.Response
		err  error
	)
	if req.ConversationID != "" {
		resp, err = h.engine.Continue(ctx, req.ConversationID, req, caller)
	} else {
		resp, err = h.engine.Recommend(ctx, req, caller)
	}
	if err != nil {
		status, apiErr := classifyError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("code", apiErr.Code).Msg("websocket query failed")
		}
		return websocket.ErrorMessage(apiErr.Code, apiErr.Message)
	}
	return websocket.Message{Type: websocket.MessageTypeRecommendation, Data: resp}
}
