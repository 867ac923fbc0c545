// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/logging"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/recommend"
)

// Search handles POST /recommendation/search. The caller is always
// treated as anonymous.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decodeRecommendRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req, nil)
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, resp, start)
}

// Personalized handles POST /recommendation/personalized. The route
// requires authentication and always blends followed users' activity.
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := auth.UserID(r.Context())
	if userID == "" {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeAuthentication, "authentication required", nil)
		return
	}

	req, ok := decodeRecommendRequest(w, r)
	if !ok {
		return
	}
	req.IncludeFollowedUsersPreferences = true

	resp, err := h.engine.Recommend(r.Context(), req, &recommend.Caller{UserID: userID})
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, resp, start)
}

// Continue handles POST /recommendation/continue/{conversationId}.
func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	conversationID := strings.TrimSpace(chi.URLParam(r, "conversationId"))
	if conversationID == "" {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "conversationId is required", nil)
		return
	}

	req, ok := decodeRecommendRequest(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithConversationID(r.Context(), conversationID)
	resp, err := h.engine.Continue(ctx, conversationID, req, callerFrom(r))
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, resp, start)
}

// Examples handles GET /recommendation/examples.
func (h *Handler) Examples(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	examples := h.engine.Examples()
	if examples == nil {
		examples = []string{}
	}
	respondData(w, r, http.StatusOK, examples, start)
}

// callerFrom returns the authenticated caller, or nil when anonymous.
func callerFrom(r *http.Request) *recommend.Caller {
	if id := auth.UserID(r.Context()); id != "" {
		return &recommend.Caller{UserID: id}
	}
	return nil
}
