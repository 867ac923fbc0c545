// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/logging"
	"github.com/tomtom215/questline/internal/metrics"
)

// RouterConfig holds configuration for the change event router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
	}
}

// Router consumes change events and applies them through a ChangeHandler.
type Router struct {
	router  *message.Router
	handler ChangeHandler
	logger  zerolog.Logger
	running atomic.Bool
}

// NewRouter subscribes handler to both change topics on sub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg *RouterConfig, sub message.Subscriber, topics Topics, handler ChangeHandler, logger zerolog.Logger) (*Router, error) {
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}
	logger = logger.With().Str("component", "events_router").Logger()

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logging.NewWatermillAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{router: wmRouter, handler: handler, logger: logger}

	// Outer to inner: drop what retries could not fix, recover panics, retry.
	wmRouter.AddMiddleware(r.dropFailed)
	wmRouter.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logging.NewWatermillAdapter(logger),
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddConsumerHandler("game_updated", topics.Updated, sub, r.consume(topics.Updated))
	wmRouter.AddConsumerHandler("game_deleted", topics.Deleted, sub, r.consume(topics.Deleted))
	return r, nil
}

func (r *Router) consume(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		change, err := DecodeGameChange(msg.Payload)
		if err != nil {
			// Redelivery cannot fix a malformed payload.
			r.logger.Warn().Err(err).Str("topic", topic).Str("message_id", msg.UUID).Msg("Dropping malformed game change")
			metrics.RecordEventHandled(topic, err)
			return nil
		}

		ctx := msg.Context()
		switch change.Kind {
		case KindUpdated:
			err = r.handler.HandleGameUpdated(ctx, change.GameID)
		case KindDeleted:
			err = r.handler.HandleGameDeleted(ctx, change.GameID)
		}
		if err != nil {
			return fmt.Errorf("handle %s for game %s: %w", change.Kind, change.GameID, err)
		}
		metrics.RecordEventHandled(topic, nil)
		return nil
	}
}

// dropFailed acknowledges messages that still fail after retries.
func (r *Router) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			r.logger.Error().Err(err).
				Str("topic", message.SubscribeTopicFromCtx(msg.Context())).
				Str("message_id", msg.UUID).
				Msg("Giving up on game change after retries")
			metrics.RecordEventHandled(message.SubscribeTopicFromCtx(msg.Context()), err)
			return nil, nil
		}
		return out, nil
	}
}

// Run starts the router and blocks until ctx is done or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
