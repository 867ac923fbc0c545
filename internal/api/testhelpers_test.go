// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/auth"
	"github.com/tomtom215/questline/internal/authz"
	"github.com/tomtom215/questline/internal/config"
	"github.com/tomtom215/questline/internal/models"
	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/semantic"
	"github.com/tomtom215/questline/internal/validation"
)

const testSecret = "questline-test-secret-0123456789abcdef"

type recordedTurn struct {
	conversationID string
	req            recommend.Request
	userID         string
}

type fakeEngine struct {
	mu     sync.Mutex
	turns  []recordedTurn
	err    error
	health recommend.HealthStatus
}

func (f *fakeEngine) record(conversationID string, req recommend.Request, caller *recommend.Caller) {
	f.mu.Lock()
	defer f.mu.Unlock()
	turn := recordedTurn{conversationID: conversationID, req: req}
	if caller != nil {
		turn.userID = caller.UserID
	}
	f.turns = append(f.turns, turn)
}

func (f *fakeEngine) lastTurn(t *testing.T) recordedTurn {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.turns) == 0 {
		t.Fatal("expected the engine to be called")
	}
	return f.turns[len(f.turns)-1]
}

func (f *fakeEngine) respond(conversationID string, req recommend.Request) (*recommend.Response, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if f.err != nil {
		return nil, f.err
	}
	if conversationID == "" {
		conversationID = "conv-1"
	}
	return &recommend.Response{
		Games: []recommend.GameRecommendation{
			{GameID: "1", Name: "Stardew Valley", Reasoning: "Matches your interest in farming."},
		},
		FollowUpQuestions: []string{},
		ConversationID:    conversationID,
	}, nil
}

//nolint:gocritic // hugeParam: mirrors the Recommender signature
func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request, caller *recommend.Caller) (*recommend.Response, error) {
	f.record("", req, caller)
	return f.respond(req.ConversationID, req)
}

//nolint:gocritic // hugeParam: mirrors the Recommender signature
func (f *fakeEngine) Continue(_ context.Context, id string, req recommend.Request, caller *recommend.Caller) (*recommend.Response, error) {
	f.record(id, req, caller)
	if id == "missing" {
		return nil, recommend.ErrConversationNotFound
	}
	return f.respond(id, req)
}

func (f *fakeEngine) Examples() []string {
	return []string{"cozy farming games with friends"}
}

func (f *fakeEngine) Health(context.Context) recommend.HealthStatus {
	return f.health
}

type fakeKeywords struct {
	mu        sync.Mutex
	refreshes int
	err       error
}

func (f *fakeKeywords) Stats() semantic.CacheStats {
	return semantic.CacheStats{TotalGenres: 3, TotalKeywords: 42}
}

func (f *fakeKeywords) IsInitialized() bool { return true }

func (f *fakeKeywords) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.err
}

type fakeIndexer struct {
	running bool
	done    chan struct{}
}

func (f *fakeIndexer) IndexAll(context.Context) (*recommend.IndexRun, error) {
	defer close(f.done)
	return &recommend.IndexRun{Indexed: 3}, nil
}

func (f *fakeIndexer) Status(context.Context) (*recommend.IndexStatus, error) {
	return &recommend.IndexStatus{Collection: "games", Running: f.running}, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	updated []string
	deleted []string
	err     error
}

func (f *fakePublisher) PublishGameUpdated(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, id)
	return f.err
}

func (f *fakePublisher) PublishGameDeleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	types []string
}

func (f *fakeBroadcaster) Broadcast(messageType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, messageType)
}

func (f *fakeBroadcaster) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.types...)
}

type testServer struct {
	handler     http.Handler
	engine      *fakeEngine
	keywords    *fakeKeywords
	indexer     *fakeIndexer
	publisher   *fakePublisher
	broadcaster *fakeBroadcaster
	jwt         *auth.JWTManager
}

func newTestServer(t *testing.T, sec *config.SecurityConfig) *testServer {
	t.Helper()
	if sec == nil {
		sec = &config.SecurityConfig{JWTSecret: testSecret, AdminUsers: []string{"admin-1"}}
	}

	ts := &testServer{
		engine:      &fakeEngine{health: recommend.HealthStatus{Healthy: true, VectorStore: "memory"}},
		keywords:    &fakeKeywords{},
		indexer:     &fakeIndexer{done: make(chan struct{})},
		publisher:   &fakePublisher{},
		broadcaster: &fakeBroadcaster{},
	}

	jwtManager, err := auth.NewJWTManager(sec)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	ts.jwt = jwtManager

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.AdminUsers = sec.AdminUsers
	enforcer, err := authz.NewEnforcer(enforcerCfg)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	logger := zerolog.Nop()
	handler := NewHandler(HandlerDeps{
		Engine:      ts.engine,
		Keywords:    ts.keywords,
		Semantic:    ts.keywords,
		Indexer:     ts.indexer,
		Publisher:   ts.publisher,
		Broadcaster: ts.broadcaster,
		CORSOrigins: sec.CORSOrigins,
	}, logger)

	router := NewRouter(handler,
		NewChiMiddleware(ChiMiddlewareConfigFrom(sec)),
		auth.NewMiddleware(jwtManager, logger),
		authz.NewMiddleware(enforcer, logger),
	)
	ts.handler = router.SetupChi()
	return ts
}

func (ts *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(userID, userID, nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// do sends a request and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var envelope models.APIResponse
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, envelope
}

func errorCode(resp models.APIResponse) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

var errBoom = errors.New("boom")
