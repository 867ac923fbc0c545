// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package metrics declares the Prometheus collectors for Questline and small
// Record* helpers so call sites stay one line long.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "questline_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Recommendation pipeline
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_pipeline_stage_duration_seconds",
			Help:    "Time spent in each recommendation pipeline stage",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	PipelineTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_pipeline_turns_total",
			Help: "Recommendation turns by terminal stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	PipelineDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_pipeline_degradations_total",
			Help: "Soft failures absorbed by a fallback, by stage",
		},
		[]string{"stage"},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "questline_recommendations_returned",
			Help:    "Number of games returned per turn",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	// Embedding
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_embedding_requests_total",
			Help: "Embedding requests by provider and result",
		},
		[]string{"provider", "result"},
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_embedding_duration_seconds",
			Help:    "Embedding call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questline_embedding_cache_hits_total",
			Help: "Embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questline_embedding_cache_misses_total",
			Help: "Embedding cache misses",
		},
	)

	// Vector store
	VectorOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_vector_operations_total",
			Help: "Vector store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	VectorSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_vector_search_duration_seconds",
			Help:    "Vector similarity search latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// Language model
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_llm_requests_total",
			Help: "Language model calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_llm_duration_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
		},
		[]string{"operation"},
	)

	// Semantic keyword cache
	KeywordCacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questline_keyword_cache_entries",
			Help: "Entries in the semantic keyword cache by category",
		},
		[]string{"category"},
	)

	KeywordCacheBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "questline_keyword_cache_build_seconds",
			Help:    "Time to build the semantic keyword cache",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Conversations
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "questline_conversations_active",
			Help: "Conversations currently held in memory",
		},
	)

	ConversationsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_conversations_evicted_total",
			Help: "Conversations removed by reason",
		},
		[]string{"reason"},
	)

	// Indexing
	GamesIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_games_indexed_total",
			Help: "Games written to or removed from the vector store",
		},
		[]string{"operation", "result"},
	)

	IndexRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "questline_index_run_duration_seconds",
			Help:    "Duration of full catalog index runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900},
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_events_published_total",
			Help: "Game change events published by topic",
		},
		[]string{"topic"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_events_handled_total",
			Help: "Game change events handled by topic and result",
		},
		[]string{"topic", "result"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questline_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Authorization
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_authz_decisions_total",
			Help: "Authorization decisions by object and result",
		},
		[]string{"object", "result"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStage records time spent in one pipeline stage.
func RecordStage(stage string, d time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordTurn records a finished turn. stage is the last stage reached.
func RecordTurn(stage string, err error, returned int) {
	PipelineTurnsTotal.WithLabelValues(stage, result(err)).Inc()
	if err == nil {
		RecommendationsReturned.Observe(float64(returned))
	}
}

// RecordDegradation counts a fallback taken in stage.
func RecordDegradation(stage string) {
	PipelineDegradations.WithLabelValues(stage).Inc()
}

// RecordEmbedding records a call to an embedding provider.
func RecordEmbedding(provider string, d time.Duration, err error) {
	EmbeddingRequests.WithLabelValues(provider, result(err)).Inc()
	EmbeddingDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordEmbeddingCache records an embedding cache lookup.
func RecordEmbeddingCache(hit bool) {
	if hit {
		EmbeddingCacheHits.Inc()
	} else {
		EmbeddingCacheMisses.Inc()
	}
}

// RecordVectorOp records a vector store operation.
func RecordVectorOp(backend, operation string, err error) {
	VectorOperations.WithLabelValues(backend, operation, result(err)).Inc()
}

// RecordVectorSearch records a similarity search.
func RecordVectorSearch(backend string, d time.Duration, err error) {
	RecordVectorOp(backend, "search", err)
	VectorSearchDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordLLM records a language model call.
func RecordLLM(operation string, d time.Duration, err error) {
	LLMRequests.WithLabelValues(operation, result(err)).Inc()
	LLMDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordKeywordCache publishes keyword cache sizes after a build.
func RecordKeywordCache(genres, platforms, modes, perspectives, combinations int, d time.Duration) {
	KeywordCacheEntries.WithLabelValues("genre").Set(float64(genres))
	KeywordCacheEntries.WithLabelValues("platform").Set(float64(platforms))
	KeywordCacheEntries.WithLabelValues("game_mode").Set(float64(modes))
	KeywordCacheEntries.WithLabelValues("perspective").Set(float64(perspectives))
	KeywordCacheEntries.WithLabelValues("combination").Set(float64(combinations))
	KeywordCacheBuildDuration.Observe(d.Seconds())
}

// RecordConversationEviction counts a conversation dropped for reason
// ("expired", "capacity", "ended").
func RecordConversationEviction(reason string) {
	ConversationsEvicted.WithLabelValues(reason).Inc()
}

// RecordIndexed counts games indexed or removed.
func RecordIndexed(operation string, n int, err error) {
	GamesIndexed.WithLabelValues(operation, result(err)).Add(float64(n))
}

// RecordEventPublished counts a published change event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventHandled counts a consumed change event.
func RecordEventHandled(topic string, err error) {
	EventsHandled.WithLabelValues(topic, result(err)).Inc()
}

// RecordCircuitBreakerTransition updates breaker state gauges.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}

// RecordAuthzDecision counts an authorization decision.
func RecordAuthzDecision(object string, allowed bool) {
	r := "denied"
	if allowed {
		r = "allowed"
	}
	AuthzDecisions.WithLabelValues(object, r).Inc()
}
