// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/questline/internal/breaker"
)

// SidecarConfig configures the GPU embedding sidecar client.
type SidecarConfig struct {
	BaseURL string
	Timeout time.Duration
	// MaxElapsed bounds the retry loop of a single call.
	MaxElapsed time.Duration
	// BatchSize is forwarded to the sidecar's own micro-batching.
	BatchSize int
}

type sidecarSingleRequest struct {
	Text string `json:"text"`
}

type sidecarSingleResponse struct {
	Embedding      []float32 `json:"embedding"`
	ProcessingTime float64   `json:"processing_time"`
	DeviceUsed     string    `json:"device_used"`
}

type sidecarBatchRequest struct {
	Texts     []string `json:"texts"`
	BatchSize int      `json:"batch_size"`
}

type sidecarBatchResponse struct {
	Embeddings     [][]float32 `json:"embeddings"`
	ProcessingTime float64     `json:"processing_time"`
	DeviceUsed     string      `json:"device_used"`
	BatchSize      int         `json:"batch_size"`
}

// SidecarEmbedder talks to the sentence-transformer sidecar over HTTP.
type SidecarEmbedder struct {
	client     *resty.Client
	cb         *breaker.Breaker
	maxElapsed time.Duration
	batchSize  int
}

// NewSidecarEmbedder creates a sidecar client.
func NewSidecarEmbedder(cfg SidecarConfig) *SidecarEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &SidecarEmbedder{
		client:     client,
		cb:         breaker.New(breaker.DefaultConfig("embedding-sidecar")),
		maxElapsed: cfg.MaxElapsed,
		batchSize:  cfg.BatchSize,
	}
}

// Name implements TextEmbedder.
func (s *SidecarEmbedder) Name() string {
	return "sidecar"
}

// Embed implements TextEmbedder.
func (s *SidecarEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out sidecarSingleResponse
	if err := s.post(ctx, "/embed/single", sidecarSingleRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Embedding, nil
}

// EmbedBatch implements TextEmbedder.
func (s *SidecarEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out sidecarBatchResponse
	req := sidecarBatchRequest{Texts: texts, BatchSize: s.batchSize}
	if err := s.post(ctx, "/embed/batch", req, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("sidecar returned %d vectors for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

// Health checks the sidecar's /health endpoint.
func (s *SidecarEmbedder) Health(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("sidecar health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sidecar health: status %d", resp.StatusCode())
	}
	return nil
}

// post retries transport errors and 5xx responses with exponential backoff.
// 4xx responses fail immediately.
func (s *SidecarEmbedder) post(ctx context.Context, path string, body, result interface{}) error {
	return breaker.Do(s.cb, func() error {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxElapsedTime = s.maxElapsed

		op := func() error {
			resp, err := s.client.R().
				SetContext(ctx).
				SetBody(body).
				SetResult(result).
				Post(path)
			if err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				return fmt.Errorf("sidecar %s: %w", path, err)
			}
			if resp.StatusCode() >= http.StatusInternalServerError {
				return fmt.Errorf("sidecar %s: status %d", path, resp.StatusCode())
			}
			if resp.IsError() {
				return backoff.Permanent(fmt.Errorf("sidecar %s: status %d: %s", path, resp.StatusCode(), resp.String()))
			}
			return nil
		}
		return backoff.Retry(op, backoff.WithContext(b, ctx))
	})
}
