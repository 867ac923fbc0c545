// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/logging"
	"github.com/tomtom215/questline/internal/models"
)

// TokenCookieName is the cookie consulted when no Authorization header is sent.
const TokenCookieName = "token"

// Middleware provides authentication middleware for chi routes.
type Middleware struct {
	jwtManager *JWTManager
	logger     zerolog.Logger
}

// NewMiddleware creates the middleware. A nil jwtManager disables
// authentication.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(jwtManager *JWTManager, logger zerolog.Logger) *Middleware {
	return &Middleware{
		jwtManager: jwtManager,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Enabled reports whether tokens are validated.
func (m *Middleware) Enabled() bool {
	return m.jwtManager != nil
}

// Authenticate requires a valid token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if err == nil && subject == nil {
			err = ErrNoCredentials
		}
		if err != nil {
			m.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAuthSubject(r.Context(), subject)))
	})
}

// OptionalAuth attaches a subject when a token is present. Requests without
// a token continue anonymously; requests with a bad token are rejected.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := m.authenticate(r)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		if subject != nil {
			r = r.WithContext(WithAuthSubject(r.Context(), subject))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate returns (nil, nil) when the request carries no token.
func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	if !m.Enabled() {
		return nil, ErrAuthDisabled
	}
	token, err := extractToken(r)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return claims.ToSubject(), nil
}

// extractToken extracts JWT token from Authorization header or cookie
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil {
			return "", nil
		}
		return cookie.Value, nil
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidCredentials
	}
	return strings.TrimSpace(token), nil
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	message := "invalid token"
	switch {
	case errors.Is(err, ErrNoCredentials):
		message = "authentication required"
	case errors.Is(err, ErrExpiredCredentials):
		message = "token expired"
	case errors.Is(err, ErrAuthDisabled):
		message = "authentication is not configured"
	}
	m.logger.Debug().Err(err).
		Str("path", r.URL.Path).
		Str("request_id", logging.RequestIDFromContext(r.Context())).
		Msg("Request rejected")

	w.Header().Set("WWW-Authenticate", `Bearer realm="questline"`)
	WriteError(w, r, http.StatusUnauthorized, models.ErrCodeAuthentication, message)
}

// WriteError writes the standard error envelope. It is shared with authz so
// both produce the same body as the API handlers.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	data, err := json.Marshal(&models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{Code: code, Message: message},
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
