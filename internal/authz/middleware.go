// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package authz

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/metrics"
	"github.com/tomtom215/questline/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	logger   zerolog.Logger
}

// NewMiddleware creates a new authorization middleware.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(enforcer *Enforcer, logger zerolog.Logger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		logger:   logger.With().Str("component", "authz").Logger(),
	}
}

// Authorize returns chi middleware requiring permission for action on
// object. It must run after auth.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				auth.WriteError(w, r, http.StatusUnauthorized, models.ErrCodeAuthentication, "authentication required")
				return
			}

			allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, object, action)
			if err != nil {
				m.logger.Error().Err(err).Str("object", object).Msg("Authorization error")
				auth.WriteError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "authorization failed")
				return
			}
			metrics.RecordAuthzDecision(object, allowed)

			if !allowed {
				m.logger.Warn().
					Str("user_id", subject.ID).
					Str("object", object).
					Str("action", action).
					Str("path", r.URL.Path).
					Msg("Access denied")
				auth.WriteError(w, r, http.StatusForbidden, models.ErrCodeAuthorization, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
