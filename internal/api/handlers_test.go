// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/websocket"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	rec, resp := ts.do(t, http.MethodPost, "/recommendation/search",
		`{"query":"cozy farming games with friends","maxResults":5}`, ts.token(t, "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "success" {
		t.Errorf("expected status success, got %s", resp.Status)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("expected request id in metadata")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff header, got %q", got)
	}

	turn := ts.engine.lastTurn(t)
	if turn.userID != "" {
		t.Errorf("expected search to be anonymous, got user %q", turn.userID)
	}
	if turn.req.MaxResults != 5 {
		t.Errorf("expected maxResults 5, got %d", turn.req.MaxResults)
	}
	if !turn.req.IncludeFollowedUsersPreferences {
		t.Error("expected includeFollowedUsersPreferences to default to true")
	}
}

func TestSearch_RequestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"invalid json", `{"query":`, http.StatusBadRequest},
		{"missing query", `{}`, http.StatusBadRequest},
		{"blank query", `{"query":"   "}`, http.StatusBadRequest},
		{"query too long", fmt.Sprintf(`{"query":%q}`, strings.Repeat("a", 501)), http.StatusBadRequest},
		{"query at limit", fmt.Sprintf(`{"query":%q}`, strings.Repeat("a", 500)), http.StatusOK},
		{"too many results", `{"query":"rpg","maxResults":51}`, http.StatusBadRequest},
		{"body too large", `{"query":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil)
			rec, resp := ts.do(t, http.MethodPost, "/recommendation/search", tt.body, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK && errorCode(resp) != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %q", errorCode(resp))
			}
		})
	}
}

func TestSearch_PipelineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"embedding", fmt.Errorf("%w: provider down", recommend.ErrEmbeddingFailed), http.StatusBadGateway, "EMBEDDING_ERROR"},
		{"search", fmt.Errorf("%w: store unreachable", recommend.ErrSearchFailed), http.StatusBadGateway, "SEARCH_ERROR"},
		{"unexpected", errBoom, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil)
			ts.engine.err = tt.err
			rec, resp := ts.do(t, http.MethodPost, "/recommendation/search", `{"query":"rpg"}`, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if errorCode(resp) != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, errorCode(resp))
			}
			if strings.Contains(rec.Body.String(), "unreachable") || strings.Contains(rec.Body.String(), "boom") {
				t.Errorf("expected internal error text to stay server-side, got %s", rec.Body.String())
			}
		})
	}
}

func TestPersonalized(t *testing.T) {
	t.Parallel()

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, nil)
		rec, resp := ts.do(t, http.MethodPost, "/recommendation/personalized", `{"query":"rpg"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
		if errorCode(resp) != "AUTHENTICATION_ERROR" {
			t.Errorf("expected AUTHENTICATION_ERROR, got %s", errorCode(resp))
		}
	})

	t.Run("forces followed users", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, nil)
		rec, _ := ts.do(t, http.MethodPost, "/recommendation/personalized",
			`{"query":"rpg","includeFollowedUsersPreferences":false}`, ts.token(t, "alice"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		turn := ts.engine.lastTurn(t)
		if turn.userID != "alice" {
			t.Errorf("expected caller alice, got %q", turn.userID)
		}
		if !turn.req.IncludeFollowedUsersPreferences {
			t.Error("expected includeFollowedUsersPreferences to be forced on")
		}
	})

	t.Run("disabled auth", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, nil)
		handler := NewHandler(HandlerDeps{Engine: ts.engine}, zerolog.Nop())
		ts.handler = NewRouter(handler, nil, nil, nil).SetupChi()
		rec, _ := ts.do(t, http.MethodPost, "/recommendation/personalized", `{"query":"rpg"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestContinue(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodPost, "/recommendation/continue/conv-7", `{"query":"something shorter"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if turn := ts.engine.lastTurn(t); turn.conversationID != "conv-7" {
		t.Errorf("expected conversation conv-7, got %q", turn.conversationID)
	}

	rec, resp := ts.do(t, http.MethodPost, "/recommendation/continue/missing", `{"query":"more"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if errorCode(resp) != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", errorCode(resp))
	}

	rec, _ = ts.do(t, http.MethodPost, "/recommendation/continue/conv-7", `{"query":"more"}`, "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected a bad token to be rejected, got %d", rec.Code)
	}

	_, _ = ts.do(t, http.MethodPost, "/recommendation/continue/conv-8", `{"query":"more"}`, ts.token(t, "bob"))
	if turn := ts.engine.lastTurn(t); turn.userID != "bob" {
		t.Errorf("expected caller bob, got %q", turn.userID)
	}
}

func TestExamplesAndHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	rec, resp := ts.do(t, http.MethodGet, "/recommendation/examples", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	examples, ok := resp.Data.([]interface{})
	if !ok || len(examples) != 1 {
		t.Errorf("expected one example, got %v", resp.Data)
	}

	rec, _ = ts.do(t, http.MethodGet, "/recommendation/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected healthy status 200, got %d", rec.Code)
	}

	ts.engine.health = recommend.HealthStatus{Healthy: false, VectorStoreError: "collection not found"}
	rec, resp = ts.do(t, http.MethodGet, "/recommendation/health", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected unhealthy status 503, got %d", rec.Code)
	}
	if resp.Data == nil {
		t.Error("expected health details on 503")
	}
}

func TestCacheRoutes(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodGet, "/recommendation/cache/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	rec, resp := ts.do(t, http.MethodPost, "/recommendation/cache/refresh", "", ts.token(t, "alice"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected non-admin refresh to be forbidden, got %d", rec.Code)
	}
	if errorCode(resp) != "AUTHORIZATION_ERROR" {
		t.Errorf("expected AUTHORIZATION_ERROR, got %s", errorCode(resp))
	}

	rec, _ = ts.do(t, http.MethodPost, "/recommendation/cache/refresh", "", ts.token(t, "admin-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// once for the semantic config, once for the keyword cache
	if ts.keywords.refreshes != 2 {
		t.Errorf("expected 2 refreshes, got %d", ts.keywords.refreshes)
	}
	if sent := ts.broadcaster.sent(); len(sent) != 1 || sent[0] != websocket.MessageTypeCacheRefreshed {
		t.Errorf("expected cache_refreshed broadcast, got %v", sent)
	}
}

func TestAdminReindex(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	rec, _ := ts.do(t, http.MethodPost, "/recommendation/admin/reindex", "", ts.token(t, "admin-1"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-ts.indexer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reindex did not run")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(ts.broadcaster.sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sent := ts.broadcaster.sent(); len(sent) != 1 || sent[0] != websocket.MessageTypeIndexCompleted {
		t.Errorf("expected index_completed broadcast, got %v", sent)
	}
}

func TestAdminReindex_AlreadyRunning(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	ts.indexer.running = true
	rec, _ := ts.do(t, http.MethodPost, "/recommendation/admin/reindex", "", ts.token(t, "admin-1"))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestAdminGameChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"anonymous", http.MethodPost, "/recommendation/admin/games/42/changed", "", http.StatusUnauthorized},
		{"regular user", http.MethodPost, "/recommendation/admin/games/42/changed", "alice", http.StatusForbidden},
		{"changed", http.MethodPost, "/recommendation/admin/games/42/changed", "admin-1", http.StatusAccepted},
		{"deleted", http.MethodDelete, "/recommendation/admin/games/43", "admin-1", http.StatusAccepted},
	}

	ts := newTestServer(t, nil)
	for _, tt := range tests {
		var token string
		if tt.token != "" {
			token = ts.token(t, tt.token)
		}
		rec, _ := ts.do(t, tt.method, tt.path, "", token)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.wantStatus, rec.Code)
		}
	}

	if len(ts.publisher.updated) != 1 || ts.publisher.updated[0] != "42" {
		t.Errorf("expected one update for 42, got %v", ts.publisher.updated)
	}
	if len(ts.publisher.deleted) != 1 || ts.publisher.deleted[0] != "43" {
		t.Errorf("expected one delete for 43, got %v", ts.publisher.deleted)
	}

	ts.publisher.err = errBoom
	rec, resp := ts.do(t, http.MethodPost, "/recommendation/admin/games/44/changed", "", ts.token(t, "admin-1"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 when publishing fails, got %d", rec.Code)
	}
	if errorCode(resp) != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %s", errorCode(resp))
	}
}

func TestHandleQuery(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	handler := NewHandler(HandlerDeps{Engine: ts.engine}, zerolog.Nop())
	off := false

	msg := handler.HandleQuery(context.Background(), "alice", &websocket.QueryMessage{
		Query:                           "co-op shooters",
		MaxResults:                      3,
		IncludeFollowedUsersPreferences: &off,
	})
	if msg.Type != websocket.MessageTypeRecommendation {
		t.Fatalf("expected recommendation, got %s", msg.Type)
	}
	turn := ts.engine.lastTurn(t)
	if turn.userID != "alice" || turn.req.MaxResults != 3 || turn.req.IncludeFollowedUsersPreferences {
		t.Errorf("unexpected turn %+v", turn)
	}

	msg = handler.HandleQuery(context.Background(), "", &websocket.QueryMessage{Query: "more", ConversationID: "missing"})
	data, ok := msg.Data.(websocket.ErrorData)
	if msg.Type != websocket.MessageTypeError || !ok || data.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %+v", msg)
	}

	msg = handler.HandleQuery(context.Background(), "", &websocket.QueryMessage{Query: ""})
	if data, ok := msg.Data.(websocket.ErrorData); !ok || data.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", msg)
	}
}
