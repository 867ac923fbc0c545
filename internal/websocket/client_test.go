// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type stubHandler struct {
	mu      sync.Mutex
	queries []string
	users   []string
}

func (h *stubHandler) HandleQuery(_ context.Context, userID string, q *QueryMessage) Message {
	h.mu.Lock()
	h.queries = append(h.queries, q.Query)
	h.users = append(h.users, userID)
	h.mu.Unlock()
	if q.Query == "" {
		return ErrorMessage("VALIDATION_ERROR", "query is required")
	}
	return Message{Type: MessageTypeRecommendation, Data: map[string]string{"echo": q.Query}}
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// setupWebSocketServer starts a hub and a test server whose connections
// are attached to it.
func setupWebSocketServer(t *testing.T, handler QueryHandler, userID string) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		_ = hub.Serve(ctx)
		close(done)
	}()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		NewClient(hub, conn, handler, userID).Start(ctx)
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
	})
	return hub, server
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg received
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClient_QueryRoundTrip(t *testing.T) {
	t.Parallel()

	handler := &stubHandler{}
	_, server := setupWebSocketServer(t, handler, "alice")
	conn := dialWebSocket(t, server)

	for _, q := range []string{"co-op shooters", "something shorter"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"query","data":{"query":"`+q+`"}}`)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeRecommendation {
			t.Fatalf("expected recommendation, got %s", msg.Type)
		}
		var data map[string]string
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data["echo"] != q {
			t.Errorf("expected echo %q, got %q", q, data["echo"])
		}
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.users) != 2 || handler.users[0] != "alice" {
		t.Errorf("expected queries from alice, got %v", handler.users)
	}
}

func TestClient_ProtocolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		frame    string
		wantType string
	}{
		{"ping", `{"type":"ping"}`, MessageTypePong},
		{"not json", `hello`, MessageTypeError},
		{"unknown type", `{"type":"subscribe"}`, MessageTypeError},
		{"query without data", `{"type":"query"}`, MessageTypeError},
		{"query data not object", `{"type":"query","data":"x"}`, MessageTypeError},
		{"empty query", `{"type":"query","data":{"query":""}}`, MessageTypeError},
	}

	_, server := setupWebSocketServer(t, &stubHandler{}, "")
	conn := dialWebSocket(t, server)

	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
			t.Fatalf("%s: write failed: %v", tt.name, err)
		}
		if msg := readMessage(t, conn); msg.Type != tt.wantType {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.wantType, msg.Type)
		}
	}
}

func TestClient_BroadcastOnly(t *testing.T) {
	t.Parallel()

	_, server := setupWebSocketServer(t, nil, "")
	conn := dialWebSocket(t, server)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"query","data":{"query":"x"}}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeError {
		t.Errorf("expected error, got %s", msg.Type)
	}
}
