// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/breaker"
	"github.com/tomtom215/questline/internal/llm"
)

// qdrantUpsertChunk bounds the points sent per upsert request.
const qdrantUpsertChunk = 100

// payloadPointID keeps the caller's ID; Qdrant only accepts integers and UUIDs.
const payloadPointID = "point_id"

var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/questline/points"))

// numericPayload fields are stored as numbers so range filters work.
var numericPayload = map[string]bool{
	PayloadRating:      true,
	PayloadReleaseYear: true,
}

// textIndexed fields get a full-text index for match conditions.
var textIndexed = []string{PayloadGenres, PayloadPlatforms, PayloadGameModes, PayloadPlayerPerspectives, PayloadName}

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	MaxElapsed time.Duration
}

// QdrantStore is a Store backed by a Qdrant server.
type QdrantStore struct {
	client     *resty.Client
	cb         *breaker.Breaker
	maxElapsed time.Duration
	logger     zerolog.Logger
}

type qdrantEnvelope[T any] struct {
	Result T      `json:"result"`
	Status string `json:"status"`
}

type qdrantCollectionInfo struct {
	Status      string `json:"status"`
	PointsCount int    `json:"points_count"`
}

type qdrantPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

type qdrantHit struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

type qdrantRange struct {
	GTE *float64 `json:"gte,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

type qdrantMatch struct {
	Text string `json:"text"`
}

type qdrantCondition struct {
	Key   string       `json:"key"`
	Range *qdrantRange `json:"range,omitempty"`
	Match *qdrantMatch `json:"match,omitempty"`
}

type qdrantFilter struct {
	Must   []qdrantCondition `json:"must,omitempty"`
	Should []qdrantCondition `json:"should,omitempty"`
}

type qdrantSearchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	Filter      *qdrantFilter `json:"filter,omitempty"`
	WithPayload bool          `json:"with_payload"`
}

// NewQdrantStore creates a Qdrant client. It does not contact the server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQdrantStore(cfg QdrantConfig, logger zerolog.Logger) (*QdrantStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("api-key", cfg.APIKey)
	}
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &QdrantStore{
		client:     client,
		cb:         breaker.New(breaker.DefaultConfig("vectordb-qdrant")),
		maxElapsed: cfg.MaxElapsed,
		logger:     logger.With().Str("component", "vectordb_qdrant").Logger(),
	}, nil
}

// Name implements Store.
func (q *QdrantStore) Name() string {
	return "qdrant"
}

// Close implements Store.
func (q *QdrantStore) Close() error {
	return nil
}

// CreateCollection implements Store. An existing collection is left as is.
func (q *QdrantStore) CreateCollection(ctx context.Context, name string, size int) error {
	if size <= 0 {
		return fmt.Errorf("create collection %s: invalid size %d", name, size)
	}
	_, err := q.collectionInfo(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCollectionNotFound) {
		return err
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{"size": size, "distance": "Cosine"},
	}
	if err := q.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	for _, field := range textIndexed {
		idx := map[string]interface{}{
			"field_name": field,
			"field_schema": map[string]interface{}{
				"type":      "text",
				"tokenizer": "word",
				"lowercase": true,
			},
		}
		if err := q.do(ctx, http.MethodPut, "/collections/"+name+"/index?wait=true", idx, nil); err != nil {
			return fmt.Errorf("create %s index: %w", field, err)
		}
	}
	q.logger.Info().Str("collection", name).Int("size", size).Msg("collection created")
	return nil
}

// CollectionExists implements Store.
func (q *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, err := q.collectionInfo(ctx, name)
	if errors.Is(err, ErrCollectionNotFound) {
		return false, nil
	}
	return err == nil, err
}

// UpsertVector implements Store.
func (q *QdrantStore) UpsertVector(ctx context.Context, collection string, point Point) error {
	return q.UpsertVectorsBulk(ctx, collection, []Point{point})
}

// UpsertVectorsBulk implements Store. Points are validated up front and sent
// in chunks; a failing chunk aborts the remainder.
func (q *QdrantStore) UpsertVectorsBulk(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	size := len(points[0].Vector)
	prepared, err := preparePoints(points, size)
	if err != nil {
		return err
	}

	for start := 0; start < len(prepared); start += qdrantUpsertChunk {
		end := min(start+qdrantUpsertChunk, len(prepared))
		chunk := make([]qdrantPoint, 0, end-start)
		for _, p := range prepared[start:end] {
			chunk = append(chunk, qdrantPoint{
				ID:      qdrantID(p.ID),
				Vector:  p.Vector,
				Payload: toQdrantPayload(p.ID, p.Payload),
			})
		}
		body := map[string]interface{}{"points": chunk}
		if err := q.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil); err != nil {
			return fmt.Errorf("upsert points %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Search implements Store. Structured boosts are applied to an enlarged
// candidate set and the result re-ranked locally.
func (q *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int, filter Filter, analysis *llm.QueryAnalysis) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	req := qdrantSearchRequest{
		Vector:      normalized(vector),
		Limit:       max(limit*2, limit+10),
		Filter:      toQdrantFilter(compileFilter(filter, analysis)),
		WithPayload: true,
	}
	var env qdrantEnvelope[[]qdrantHit]
	if err := q.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req, &env); err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	results := make([]SearchResult, 0, len(env.Result))
	for _, hit := range env.Result {
		id, payload := fromQdrantPayload(hit.ID, hit.Payload)
		results = append(results, SearchResult{
			ID:      id,
			Score:   hit.Score + analysisBoost(payload, analysis),
			Payload: payload,
		})
	}
	return rank(results, limit), nil
}

// DeleteVector implements Store.
func (q *QdrantStore) DeleteVector(ctx context.Context, collection, id string) error {
	body := map[string]interface{}{"points": []string{qdrantID(id)}}
	if err := q.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", body, nil); err != nil {
		return fmt.Errorf("delete point %s: %w", id, err)
	}
	return nil
}

// PointCount implements Store.
func (q *QdrantStore) PointCount(ctx context.Context, collection string) (int, error) {
	info, err := q.collectionInfo(ctx, collection)
	if err != nil {
		return 0, err
	}
	return info.PointsCount, nil
}

func (q *QdrantStore) collectionInfo(ctx context.Context, name string) (*qdrantCollectionInfo, error) {
	var env qdrantEnvelope[qdrantCollectionInfo]
	if err := q.do(ctx, http.MethodGet, "/collections/"+name, nil, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// do runs a request through the circuit breaker, retrying transport errors
// and 5xx responses. A 404 maps to ErrCollectionNotFound. The body is
// decoded into result whatever the response Content-Type; an undecodable
// body is an error.
func (q *QdrantStore) do(ctx context.Context, method, path string, body, result interface{}) error {
	return breaker.Do(q.cb, func() error {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 100 * time.Millisecond
		b.MaxElapsedTime = q.maxElapsed

		op := func() error {
			req := q.client.R().SetContext(ctx)
			if body != nil {
				req.SetBody(body)
			}
			resp, err := req.Execute(method, path)
			if err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				return err
			}
			switch {
			case resp.StatusCode() == http.StatusNotFound:
				return backoff.Permanent(ErrCollectionNotFound)
			case resp.StatusCode() >= http.StatusInternalServerError:
				return fmt.Errorf("status %d", resp.StatusCode())
			case resp.IsError():
				return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
			}
			if result != nil {
				if err := json.Unmarshal(resp.Body(), result); err != nil {
					return backoff.Permanent(fmt.Errorf("decode %s %s response: %w", method, path, err))
				}
			}
			return nil
		}
		return backoff.Retry(op, backoff.WithContext(b, ctx))
	})
}

// qdrantID maps an arbitrary point ID to a stable UUID.
func qdrantID(id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(id)).String()
}

func toQdrantPayload(id string, payload map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		if numericPayload[k] {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[k] = n
				continue
			}
		}
		out[k] = v
	}
	out[payloadPointID] = id
	return out
}

func fromQdrantPayload(rawID interface{}, payload map[string]interface{}) (string, map[string]string) {
	out := make(map[string]string, len(payload))
	id := fmt.Sprint(rawID)
	for k, v := range payload {
		if k == payloadPointID {
			if s, ok := v.(string); ok {
				id = s
			}
			continue
		}
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return id, out
}

func toQdrantFilter(f compiledFilter) *qdrantFilter {
	if f.empty() {
		return nil
	}
	out := &qdrantFilter{}
	for _, m := range f.must {
		out.Must = append(out.Must, qdrantCondition{
			Key:   m.key,
			Range: &qdrantRange{GTE: m.gte, LTE: m.lte},
		})
	}
	for _, s := range f.should {
		for _, v := range s.values {
			out.Should = append(out.Should, qdrantCondition{
				Key:   s.key,
				Match: &qdrantMatch{Text: v},
			})
		}
	}
	return out
}
