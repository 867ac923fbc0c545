// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/recommend"
	"github.com/tomtom215/questline/internal/semantic"
	"github.com/tomtom215/questline/internal/websocket"
)

// Recommender runs recommendation turns. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request, caller *recommend.Caller) (*recommend.Response, error)
	Continue(ctx context.Context, conversationID string, req recommend.Request, caller *recommend.Caller) (*recommend.Response, error)
	Examples() []string
	Health(ctx context.Context) recommend.HealthStatus
}

// KeywordCache is the semantic keyword cache. *semantic.KeywordCache
// implements it.
type KeywordCache interface {
	Stats() semantic.CacheStats
	IsInitialized() bool
	Refresh(ctx context.Context) error
}

// ConfigRefresher reloads the semantic mapping files.
// *semantic.ConfigService implements it.
type ConfigRefresher interface {
	Refresh(ctx context.Context) error
}

// Indexer rebuilds the vector index. *recommend.Indexer implements it.
type Indexer interface {
	IndexAll(ctx context.Context) (*recommend.IndexRun, error)
	Status(ctx context.Context) (*recommend.IndexStatus, error)
}

// ChangePublisher announces catalog changes. *events.Publisher implements it.
type ChangePublisher interface {
	PublishGameUpdated(ctx context.Context, gameID string) error
	PublishGameDeleted(ctx context.Context, gameID string) error
}

// Broadcaster pushes notifications to websocket clients.
// *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// Handler serves the recommendation API.
type Handler struct {
	engine      Recommender
	keywords    KeywordCache
	semantic    ConfigRefresher
	indexer     Indexer
	publisher   ChangePublisher
	broadcaster Broadcaster
	hub         *websocket.Hub
	baseCtx     context.Context
	corsOrigins []string
	logger      zerolog.Logger
}

// HandlerDeps are the collaborators of a Handler. Engine is required; a
// nil optional collaborator makes its routes answer 503.
type HandlerDeps struct {
	Engine      Recommender
	Keywords    KeywordCache
	Semantic    ConfigRefresher
	Indexer     Indexer
	Publisher   ChangePublisher
	Broadcaster Broadcaster
	// Hub serves /ws; nil disables the websocket route.
	Hub *websocket.Hub
	// BaseContext bounds websocket sessions, which outlive their upgrade
	// request. Defaults to context.Background.
	BaseContext context.Context
	// CORSOrigins also gates websocket upgrades.
	CORSOrigins []string
}

// NewHandler creates a Handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps HandlerDeps, logger zerolog.Logger) *Handler {
	baseCtx := deps.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	broadcaster := deps.Broadcaster
	if broadcaster == nil && deps.Hub != nil {
		broadcaster = deps.Hub
	}
	return &Handler{
		engine:      deps.Engine,
		keywords:    deps.Keywords,
		semantic:    deps.Semantic,
		indexer:     deps.Indexer,
		publisher:   deps.Publisher,
		broadcaster: broadcaster,
		hub:         deps.Hub,
		baseCtx:     baseCtx,
		corsOrigins: deps.CORSOrigins,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) broadcast(messageType string, data interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.Broadcast(messageType, data)
	}
}
