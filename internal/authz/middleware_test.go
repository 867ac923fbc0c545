// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package authz

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/auth"
)

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(newTestEnforcer(t, "alice"), zerolog.Nop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		subject    *auth.AuthSubject
		wantStatus int
		wantCode   string
	}{
		{"anonymous", nil, http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
		{"plain user", &auth.AuthSubject{ID: "bob"}, http.StatusForbidden, "AUTHORIZATION_ERROR"},
		{"admin", &auth.AuthSubject{ID: "alice"}, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/recommendation/admin/reindex", nil)
			if tt.subject != nil {
				req = req.WithContext(auth.WithAuthSubject(req.Context(), tt.subject))
			}
			rec := httptest.NewRecorder()
			mw.Authorize(ObjectIndex, ActionWrite)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("expected %s in body, got %s", tt.wantCode, rec.Body.String())
			}
		})
	}
}
