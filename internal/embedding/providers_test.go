// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/questline/internal/config"
)

func unitVector(hot int) []float32 {
	v := make([]float32, Dimensions)
	v[hot%Dimensions] = 1
	return v
}

func TestHashEmbedder(t *testing.T) {
	t.Parallel()

	h := NewHashEmbedder()
	ctx := context.Background()

	a, err := h.Embed(ctx, "Cozy farming simulation with friends")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := h.Embed(ctx, "cozy FARMING simulation, with friends!")
	c, _ := h.Embed(ctx, "grim military shooter")

	assertUnit(t, a)
	if sim := Dot(a, b); sim < 0.999 {
		t.Errorf("expected case and punctuation to be ignored, similarity %f", sim)
	}
	if Dot(a, c) >= Dot(a, b) {
		t.Error("expected unrelated text to be less similar")
	}

	if _, err := h.Embed(ctx, "  "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if v, err := h.Embed(ctx, "the"); err != nil || len(v) != Dimensions {
		t.Errorf("expected stop-word-only text to embed, got %v", err)
	}
}

func TestHashEmbedder_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashEmbedder().Embed(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSidecarEmbedder(t *testing.T) {
	t.Parallel()

	var failures atomic.Int32
	failures.Store(1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/embed/single":
			if failures.Add(-1) >= 0 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			var req sidecarSingleRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(sidecarSingleResponse{Embedding: unitVector(len(req.Text)), DeviceUsed: "cpu"})
		case "/embed/batch":
			var req sidecarBatchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			resp := sidecarBatchResponse{BatchSize: req.BatchSize, DeviceUsed: "cpu"}
			for _, text := range req.Texts {
				resp.Embeddings = append(resp.Embeddings, unitVector(len(text)))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewSidecarEmbedder(SidecarConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	ctx := context.Background()

	v, err := s.Embed(ctx, "abc")
	if err != nil {
		t.Fatalf("expected retry to recover from one 503, got %v", err)
	}
	if len(v) != Dimensions || v[3] != 1 {
		t.Errorf("unexpected vector: len %d", len(v))
	}

	vs, err := s.EmbedBatch(ctx, []string{"a", "bb"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 2 || vs[1][2] != 1 {
		t.Errorf("unexpected batch result")
	}

	if err := s.Health(ctx); err != nil {
		t.Errorf("expected healthy sidecar, got %v", err)
	}
}

func TestSidecarEmbedder_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewSidecarEmbedder(SidecarConfig{BaseURL: srv.URL})
	if _, err := s.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Dimensions != Dimensions {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		var data []item
		// Reverse order to prove results are re-sorted by index.
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Index: i, Embedding: unitVector(i)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder("test-key", srv.URL+"/v1", "all-MiniLM-L6-v2")
	if err != nil {
		t.Fatal(err)
	}
	vs, err := e.EmbedBatch(context.Background(), []string{"first", "second", "third"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range vs {
		if v[i] != 1 {
			t.Errorf("vector %d out of order", i)
		}
	}
}

func TestNewEmbedder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"", "hash", false},
		{"hash", "hash", false},
		{"sidecar", "sidecar", false},
		{"openai", "", true}, // no API key
		{"word2vec", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			e, err := NewEmbedder(&config.EmbeddingConfig{Provider: tt.provider, SidecarURL: "http://localhost:8001"})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Name() != tt.wantName {
				t.Errorf("expected %s, got %s", tt.wantName, e.Name())
			}
		})
	}
}

func TestBlendAndAverage(t *testing.T) {
	t.Parallel()

	a, b := unitVector(0), unitVector(1)
	blended, err := Blend(a, b, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	assertUnit(t, blended)
	if blended[0] <= blended[1] {
		t.Error("expected the heavier vector to dominate")
	}
	if _, err := Blend(a, make([]float32, 3), 0.5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	avg := Average([][]float32{a, b})
	if avg[0] != 0.5 || avg[1] != 0.5 {
		t.Errorf("expected 0.5/0.5, got %f/%f", avg[0], avg[1])
	}
}
