// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/questline/internal/recommend"
)

// Reindexer rebuilds the vector index. *recommend.Indexer implements it.
type Reindexer interface {
	EnsureCollection(ctx context.Context) error
	IndexAll(ctx context.Context) (*recommend.IndexRun, error)
}

// ReindexServiceConfig holds configuration for the reindex service.
type ReindexServiceConfig struct {
	// OnStartup runs a full reindex when the service starts.
	OnStartup bool

	// Schedule is a standard five-field cron expression. Empty disables
	// scheduled reindexing.
	Schedule string

	// Timeout bounds one reindex. Default: 30m
	Timeout time.Duration

	// OnComplete is called after every finished run.
	OnComplete func(run *recommend.IndexRun)
}

// ReindexService keeps the vector collection present and periodically
// re-embeds the whole catalog.
type ReindexService struct {
	indexer Reindexer
	config  ReindexServiceConfig
	logger  zerolog.Logger
	started bool
}

// NewReindexService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReindexService(indexer Reindexer, cfg ReindexServiceConfig, logger zerolog.Logger) *ReindexService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &ReindexService{
		indexer: indexer,
		config:  cfg,
		logger:  logger.With().Str("service", "reindex").Logger(),
	}
}

// Serve implements suture.Service. The collection is created first; a
// failure there is returned so the supervisor retries. The startup reindex
// runs only on the first successful start, not after restarts.
func (s *ReindexService) Serve(ctx context.Context) error {
	if err := s.indexer.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	first := !s.started
	s.started = true
	if s.config.OnStartup && first {
		s.run(ctx, "startup")
	}

	if s.config.Schedule == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := c.AddFunc(s.config.Schedule, func() { s.run(ctx, "schedule") }); err != nil {
		s.logger.Error().Err(err).Str("schedule", s.config.Schedule).Msg("invalid reindex schedule")
		return suture.ErrDoNotRestart
	}
	c.Start()
	s.logger.Info().Str("schedule", s.config.Schedule).Msg("scheduled reindexing enabled")

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (s *ReindexService) run(ctx context.Context, trigger string) {
	rctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	run, err := s.indexer.IndexAll(rctx)
	switch {
	case errors.Is(err, recommend.ErrIndexingInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("reindex skipped, another run is in progress")
		return
	case err != nil:
		s.logger.Error().Err(err).Str("trigger", trigger).Msg("reindex failed")
		return
	}

	s.logger.Info().
		Str("trigger", trigger).
		Int("indexed", run.Indexed).
		Int("failed", run.Failed).
		Dur("duration", run.FinishedAt.Sub(run.StartedAt)).
		Msg("reindex finished")
	if s.config.OnComplete != nil {
		s.config.OnComplete(run)
	}
}

// String implements fmt.Stringer for suture logging.
func (s *ReindexService) String() string {
	return "reindex"
}
