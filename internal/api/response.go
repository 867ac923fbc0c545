// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/questline/internal/logging"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/validation"
)

// maxBodyBytes bounds request bodies. Queries are at most 500 characters,
// so anything larger is abuse.
const maxBodyBytes = 64 * 1024

// respondJSON writes response with the given status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope. start is when the handler began.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError writes an error envelope. err, when set, is logged but
// never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Error()
		if status < http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Warn()
		}
		event.Err(err).
			Str("code", apiErr.Code).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

// classifyError maps pipeline and collaborator errors onto HTTP. Only
// embedding and search failures are surfaced as such; everything else
// unexpected is an internal error.
func classifyError(err error) (int, *models.APIError) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		return http.StatusBadRequest, &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	case errors.Is(err, recommend.ErrConversationNotFound):
		return http.StatusNotFound, &models.APIError{Code: models.ErrCodeNotFound, Message: "conversation not found or expired"}
	case errors.Is(err, recommend.ErrEmbeddingFailed):
		return http.StatusBadGateway, &models.APIError{Code: models.ErrCodeEmbedding, Message: "failed to generate query embedding"}
	case errors.Is(err, recommend.ErrSearchFailed):
		return http.StatusBadGateway, &models.APIError{Code: models.ErrCodeSearch, Message: "failed to search games"}
	case errors.Is(err, recommend.ErrIndexingInProgress):
		return http.StatusConflict, &models.APIError{Code: models.ErrCodeUnavailable, Message: "indexing already in progress"}
	default:
		return http.StatusInternalServerError, &models.APIError{Code: models.ErrCodeInternal, Message: "internal server error"}
	}
}

// respondPipelineError classifies err and writes it.
func respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	var logged error
	if status >= http.StatusInternalServerError {
		logged = err
	}
	respondAPIError(w, r, status, apiErr, logged)
}

// decodeRecommendRequest reads a recommendation request body. Omitted
// fields keep the defaults of recommend.NewRequest.
func decodeRecommendRequest(w http.ResponseWriter, r *http.Request) (recommend.Request, bool) {
	req := recommend.NewRequest("")
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.ErrCodeValidation, "request body too large", nil)
			return req, false
		}
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "failed to read request body", nil)
		return req, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "request body is required", nil)
		return req, false
	}
	if err := json.Unmarshal(data, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", nil)
		return req, false
	}
	return req, true
}
