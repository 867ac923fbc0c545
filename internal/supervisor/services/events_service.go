// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// EventRouter consumes messages until ctx is canceled. *events.Router
// implements it.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterFactory builds a fresh router. Watermill routers cannot be
// run twice, so every restart needs a new one.
type EventRouterFactory func() (EventRouter, error)

// EventRouterService runs the game change consumer.
type EventRouterService struct {
	factory EventRouterFactory
	logger  zerolog.Logger
}

// NewEventRouterService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(factory EventRouterFactory, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		factory: factory,
		logger:  logger.With().Str("service", "event-router").Logger(),
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	defer func() {
		if err := router.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("event router close failed")
		}
	}()

	if err := router.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Run returned cleanly without cancellation; restart to resubscribe.
	return fmt.Errorf("event router exited unexpectedly")
}

// String implements fmt.Stringer for suture logging.
func (s *EventRouterService) String() string {
	return "event-router"
}
