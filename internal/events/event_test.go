// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package events

import (
	"testing"
)

func TestTopicsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base         string
		wantUpdated  string
		wantDeleted  string
		wantWildcard string
	}{
		{"game", "game.updated", "game.deleted", "game.>"},
		{"", "game.updated", "game.deleted", "game.>"},
		{" catalog.games. ", "catalog.games.updated", "catalog.games.deleted", "catalog.games.>"},
	}

	for _, tt := range tests {
		topics := TopicsFor(tt.base)
		if topics.Updated != tt.wantUpdated || topics.Deleted != tt.wantDeleted {
			t.Errorf("TopicsFor(%q): expected %s/%s, got %s/%s", tt.base, tt.wantUpdated, tt.wantDeleted, topics.Updated, topics.Deleted)
		}
		if got := topics.Wildcard(); got != tt.wantWildcard {
			t.Errorf("Wildcard(%q): expected %s, got %s", tt.base, tt.wantWildcard, got)
		}
	}

	if _, err := TopicsFor("game").For("renamed"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGameChangeEncodeDecode(t *testing.T) {
	t.Parallel()

	change := NewGameChange(KindUpdated, " hades ")
	if change.GameID != "hades" || change.EventID == "" {
		t.Fatalf("unexpected change %+v", change)
	}
	data, err := change.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := DecodeGameChange(data)
	if err != nil {
		t.Fatalf("DecodeGameChange() error = %v", err)
	}
	if got.GameID != "hades" || got.Kind != KindUpdated || got.EventID != change.EventID {
		t.Errorf("expected %+v, got %+v", change, got)
	}
}

func TestGameChangeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{"},
		{"missing game id", `{"eventId":"e1","kind":"updated"}`},
		{"blank game id", `{"eventId":"e1","gameId":"  ","kind":"updated"}`},
		{"unknown kind", `{"eventId":"e1","gameId":"hades","kind":"renamed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeGameChange([]byte(tt.payload)); err == nil {
				t.Error("expected decode error")
			}
		})
	}

	if _, err := NewGameChange(KindDeleted, "").Encode(); err == nil {
		t.Error("expected encode to reject an empty game id")
	}
}
