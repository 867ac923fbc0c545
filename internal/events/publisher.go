// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/breaker"
	"github.com/tomtom215/questline/internal/metrics"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher publishes game change events with circuit breaker protection.
type Publisher struct {
	publisher message.Publisher
	topics    Topics
	breaker   *breaker.Breaker
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. The caller keeps ownership of pub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, topics Topics, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		topics:    topics,
		breaker:   breaker.New(breaker.DefaultConfig("events")),
		logger:    logger.With().Str("component", "events_publisher").Logger(),
	}
}

// PublishGameUpdated announces that a game was created or changed.
func (p *Publisher) PublishGameUpdated(ctx context.Context, gameID string) error {
	return p.Publish(ctx, NewGameChange(KindUpdated, gameID))
}

// PublishGameDeleted announces that a game was removed.
func (p *Publisher) PublishGameDeleted(ctx context.Context, gameID string) error {
	return p.Publish(ctx, NewGameChange(KindDeleted, gameID))
}

// Publish sends change to its topic. The event id doubles as the message
// UUID so JetStream can deduplicate retries.
func (p *Publisher) Publish(ctx context.Context, change *GameChange) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	topic, err := p.topics.For(change.Kind)
	if err != nil {
		return err
	}
	data, err := change.Encode()
	if err != nil {
		return fmt.Errorf("encode game change: %w", err)
	}

	msg := message.NewMessage(change.EventID, data)
	msg.Metadata.Set("game_id", change.GameID)
	msg.Metadata.Set("kind", change.Kind)
	msg.SetContext(ctx)

	if err := breaker.Do(p.breaker, func() error {
		return p.publisher.Publish(topic, msg)
	}); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	metrics.RecordEventPublished(topic)
	p.logger.Debug().
		Str("topic", topic).
		Str("game_id", change.GameID).
		Str("event_id", change.EventID).
		Msg("Published game change")
	return nil
}

// Close stops further publishing. It does not close the underlying
// publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
