// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper evicts expired entries and reports how many were removed.
// *conversation.Store implements it.
type Sweeper interface {
	Sweep() int
}

// SweeperService sweeps idle conversations on a fixed interval.
type SweeperService struct {
	sweeper  Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeperService creates the service. A non-positive interval uses one
// minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSweeperService(sweeper Sweeper, interval time.Duration, logger zerolog.Logger) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With().Str("service", "conversation-sweeper").Logger(),
	}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.Sweep(); n > 0 {
				s.logger.Debug().Int("evicted", n).Msg("expired conversations evicted")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *SweeperService) String() string {
	return "conversation-sweeper"
}
