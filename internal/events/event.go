// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/questline/internal/validation"
)

// Change kinds.
const (
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// DefaultTopicBase prefixes the change topics.
const DefaultTopicBase = "game"

// Topics names the change topics.
type Topics struct {
	Updated string
	Deleted string
}

// TopicsFor derives the topics from base, e.g. "game" -> game.updated.
func TopicsFor(base string) Topics {
	base = strings.Trim(strings.TrimSpace(base), ".")
	if base == "" {
		base = DefaultTopicBase
	}
	return Topics{
		Updated: base + "." + KindUpdated,
		Deleted: base + "." + KindDeleted,
	}
}

// Wildcard returns the NATS subject matching every change topic.
func (t Topics) Wildcard() string {
	base, _, _ := strings.Cut(t.Updated, "."+KindUpdated)
	return base + ".>"
}

// For returns the topic for kind.
func (t Topics) For(kind string) (string, error) {
	switch kind {
	case KindUpdated:
		return t.Updated, nil
	case KindDeleted:
		return t.Deleted, nil
	default:
		return "", fmt.Errorf("unknown change kind %q", kind)
	}
}

// GameChange is the payload of a change message.
type GameChange struct {
	EventID    string    `json:"eventId"`
	GameID     string    `json:"gameId" validate:"required,notblank,max=128"`
	Kind       string    `json:"kind" validate:"required,oneof=updated deleted"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewGameChange creates a change event with a fresh id.
func NewGameChange(kind, gameID string) *GameChange {
	return &GameChange{
		EventID:    uuid.New().String(),
		GameID:     strings.TrimSpace(gameID),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (c *GameChange) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	return nil
}

// Encode serializes the change.
func (c *GameChange) Encode() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// DecodeGameChange parses and validates a change payload.
func DecodeGameChange(data []byte) (*GameChange, error) {
	var c GameChange
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode game change: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ChangeHandler applies change events. recommend.ChangeTracker implements it.
type ChangeHandler interface {
	HandleGameUpdated(ctx context.Context, gameID string) error
	HandleGameDeleted(ctx context.Context, gameID string) error
}
