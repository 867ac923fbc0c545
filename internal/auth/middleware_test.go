// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// echoSubject writes the authenticated user ID or "anonymous".
var echoSubject = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id := UserID(r.Context()); id != "" {
		_, _ = w.Write([]byte(id))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func TestMiddleware(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t, "")
	valid, err := manager.GenerateToken("user-42", "alice", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	enabled := NewMiddleware(manager, zerolog.Nop())
	disabled := NewMiddleware(nil, zerolog.Nop())

	tests := []struct {
		name       string
		mw         func(http.Handler) http.Handler
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"required valid header", enabled.Authenticate, "Bearer " + valid, "", http.StatusOK, "user-42"},
		{"required lowercase scheme", enabled.Authenticate, "bearer " + valid, "", http.StatusOK, "user-42"},
		{"required valid cookie", enabled.Authenticate, "", valid, http.StatusOK, "user-42"},
		{"required missing", enabled.Authenticate, "", "", http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
		{"required invalid", enabled.Authenticate, "Bearer nope", "", http.StatusUnauthorized, "invalid token"},
		{"required wrong scheme", enabled.Authenticate, "Basic abc", "", http.StatusUnauthorized, "invalid token"},
		{"required disabled", disabled.Authenticate, "Bearer " + valid, "", http.StatusUnauthorized, "not configured"},
		{"optional anonymous", enabled.OptionalAuth, "", "", http.StatusOK, "anonymous"},
		{"optional valid", enabled.OptionalAuth, "Bearer " + valid, "", http.StatusOK, "user-42"},
		{"optional invalid", enabled.OptionalAuth, "Bearer nope", "", http.StatusUnauthorized, "invalid token"},
		{"optional disabled ignores token", disabled.OptionalAuth, "Bearer nope", "", http.StatusOK, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/recommendation/personalized", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			tt.mw(echoSubject).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header on 401")
			}
		})
	}
}
