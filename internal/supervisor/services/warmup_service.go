// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Warmer builds a cache on first use. *semantic.KeywordCache implements it.
type Warmer interface {
	EnsureInitialized(ctx context.Context) error
}

// WarmupService builds the keyword cache shortly after startup so the
// first request does not pay for it. It runs once; failures are retried
// by the supervisor.
type WarmupService struct {
	warmer  Warmer
	delay   time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewWarmupService creates the service. delay postpones the build so the
// HTTP listener comes up first.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmupService(warmer Warmer, delay time.Duration, logger zerolog.Logger) *WarmupService {
	return &WarmupService{
		warmer:  warmer,
		delay:   delay,
		timeout: 2 * time.Minute,
		logger:  logger.With().Str("service", "keyword-warmup").Logger(),
	}
}

// Serve implements suture.Service.
func (s *WarmupService) Serve(ctx context.Context) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.EnsureInitialized(wctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("keyword cache warmup: %w", err)
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("keyword cache warmed up")
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for suture logging.
func (s *WarmupService) String() string {
	return "keyword-warmup"
}
