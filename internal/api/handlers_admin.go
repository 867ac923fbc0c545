// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/questline/internal/events"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/websocket"
)

// reindexTimeout bounds a reindex started from the API.
const reindexTimeout = 30 * time.Minute

// GameChangeAccepted is returned when a change event was published.
type GameChangeAccepted struct {
	GameID string `json:"gameId"`
	Kind   string `json:"kind"`
}

// CacheRefreshResult reports the state after a cache refresh.
type CacheRefreshResult struct {
	Stats interface{} `json:"stats"`
	// ConfigWarning is set when the mapping files could not be read and
	// defaults were used.
	ConfigWarning string `json:"configWarning,omitempty"`
}

// Health handles GET /recommendation/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.engine.Health(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	respondData(w, r, code, status, start)
}

// CacheStats handles GET /recommendation/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.keywords == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "keyword cache not configured", nil)
		return
	}
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"initialized": h.keywords.IsInitialized(),
		"stats":       h.keywords.Stats(),
	}, start)
}

// CacheRefresh handles POST /recommendation/cache/refresh. It reloads the
// mapping files, then rebuilds the keyword cache.
func (h *Handler) CacheRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.keywords == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "keyword cache not configured", nil)
		return
	}

	var result CacheRefreshResult
	if h.semantic != nil {
		if err := h.semantic.Refresh(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("semantic config refresh fell back to defaults")
			result.ConfigWarning = "semantic configuration could not be read; defaults in use"
		}
	}
	if err := h.keywords.Refresh(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "failed to refresh keyword cache", err)
		return
	}

	stats := h.keywords.Stats()
	result.Stats = stats
	h.broadcast(websocket.MessageTypeCacheRefreshed, stats)
	h.logger.Info().
		Int("genres", stats.TotalGenres).
		Int("platforms", stats.TotalPlatforms).
		Int64("keywords", stats.TotalKeywords).
		Msg("Keyword cache refreshed via API")
	respondData(w, r, http.StatusOK, result, start)
}

// Reindex handles POST /recommendation/admin/reindex. The reindex runs in
// the background; completion is broadcast to websocket clients.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.indexer == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "indexer not configured", nil)
		return
	}

	status, err := h.indexer.Status(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "vector store unavailable", err)
		return
	}
	if status.Running {
		respondError(w, r, http.StatusConflict, models.ErrCodeUnavailable, "indexing already in progress", nil)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go h.runReindex(ctx)

	respondData(w, r, http.StatusAccepted, status, start)
}

func (h *Handler) runReindex(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, reindexTimeout)
	defer cancel()

	run, err := h.indexer.IndexAll(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("API reindex did not run")
		return
	}
	h.broadcast(websocket.MessageTypeIndexCompleted, run)
}

// GameChanged handles POST /recommendation/admin/games/{id}/changed.
func (h *Handler) GameChanged(w http.ResponseWriter, r *http.Request) {
	h.publishChange(w, r, events.KindUpdated)
}

// GameDeleted handles DELETE /recommendation/admin/games/{id}.
func (h *Handler) GameDeleted(w http.ResponseWriter, r *http.Request) {
	h.publishChange(w, r, events.KindDeleted)
}

func (h *Handler) publishChange(w http.ResponseWriter, r *http.Request, kind string) {
	start := time.Now()
	if h.publisher == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "change events not configured", nil)
		return
	}
	gameID := strings.TrimSpace(chi.URLParam(r, "id"))
	if gameID == "" || len(gameID) > 128 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "invalid game id", nil)
		return
	}

	var err error
	if kind == events.KindDeleted {
		err = h.publisher.PublishGameDeleted(r.Context(), gameID)
	} else {
		err = h.publisher.PublishGameUpdated(r.Context(), gameID)
	}
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "failed to publish change event", err)
		return
	}
	respondData(w, r, http.StatusAccepted, GameChangeAccepted{GameID: gameID, Kind: kind}, start)
}
