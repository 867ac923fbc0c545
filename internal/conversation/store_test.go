// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package conversation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(cfg Config) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return newStore(cfg, clock.Now, testLogger()), clock
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{})

	st := s.GetOrCreate("", "user-1")
	if _, err := uuid.Parse(st.ConversationID); err != nil {
		t.Errorf("expected generated UUID, got %q", st.ConversationID)
	}
	if st.UserID != "user-1" || st.TurnCount != 0 {
		t.Errorf("unexpected new state %+v", st)
	}

	again := s.GetOrCreate(st.ConversationID, "someone-else")
	if again.UserID != "user-1" {
		t.Errorf("expected existing conversation to keep its user, got %q", again.UserID)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 conversation, got %d", s.Len())
	}

	given := s.GetOrCreate("client-chosen", "")
	if given.ConversationID != "client-chosen" {
		t.Errorf("expected given id, got %q", given.ConversationID)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{})
	st := s.GetOrCreate("c1", "")

	for i := 0; i < 12; i++ {
		if err := s.Update(st.ConversationID, fmt.Sprintf("q%d", i), []string{fmt.Sprintf("g%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, ok := s.Get("c1")
	if !ok {
		t.Fatal("expected conversation")
	}
	if len(got.QueryHistory) != MaxQueryHistory {
		t.Fatalf("expected %d queries, got %d", MaxQueryHistory, len(got.QueryHistory))
	}
	if got.QueryHistory[0] != "q2" || got.QueryHistory[9] != "q11" {
		t.Errorf("expected oldest queries dropped, got %v", got.QueryHistory)
	}
	if got.LastQuery != "q11" || got.TurnCount != 12 {
		t.Errorf("unexpected state %+v", got)
	}
	if len(got.LastRecommendedGameIDs) != 1 || got.LastRecommendedGameIDs[0] != "g11" {
		t.Errorf("expected last game ids replaced, got %v", got.LastRecommendedGameIDs)
	}

	// snapshots are independent
	got.QueryHistory[0] = "mutated"
	again, _ := s.Get("c1")
	if again.QueryHistory[0] != "q2" {
		t.Error("expected Get to return a copy")
	}

	if err := s.Update("missing", "q", nil); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{})
	s.GetOrCreate("c1", "")

	if err := s.AddContext("c1", "platform", "PC"); err != nil {
		t.Fatal(err)
	}
	if v, ok := s.GetContext("c1", "platform"); !ok || v != "PC" {
		t.Errorf("expected PC, got %q %v", v, ok)
	}
	if _, ok := s.GetContext("c1", "missing"); ok {
		t.Error("expected missing key")
	}
	if err := s.AddContext("nope", "k", "v"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < maxContextEntries+5; i++ {
		_ = s.AddContext("c1", fmt.Sprintf("k%d", i), "v")
	}
	st, _ := s.Get("c1")
	if len(st.Context) != maxContextEntries {
		t.Errorf("expected context capped at %d, got %d", maxContextEntries, len(st.Context))
	}
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(Config{TTL: 30 * time.Minute})
	s.GetOrCreate("idle", "")
	s.GetOrCreate("active", "")

	clock.Advance(20 * time.Minute)
	if _, ok := s.Get("active"); !ok {
		t.Fatal("expected active conversation")
	}
	clock.Advance(20 * time.Minute)

	if _, ok := s.Get("idle"); ok {
		t.Error("expected idle conversation to expire")
	}
	if _, ok := s.Get("active"); !ok {
		t.Error("expected access to extend the TTL")
	}

	clock.Advance(31 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Errorf("expected sweep to remove 1, got %d", n)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestCapacity(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{Capacity: 2})
	s.GetOrCreate("a", "")
	s.GetOrCreate("b", "")
	s.Get("a")
	s.GetOrCreate("c", "")

	if _, ok := s.Get("b"); ok {
		t.Error("expected least recently used conversation evicted")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("expected recently used conversation kept")
	}
}

func TestEnd(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{})
	s.GetOrCreate("c1", "")
	if !s.End("c1") {
		t.Error("expected End to report removal")
	}
	if s.End("c1") {
		t.Error("expected second End to report nothing removed")
	}
	if _, ok := s.Get("c1"); ok {
		t.Error("expected conversation gone")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(Config{})
	s.GetOrCreate("shared", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.GetOrCreate("shared", "")
			_ = s.Update("shared", fmt.Sprintf("q%d", i), nil)
		}(i)
	}
	wg.Wait()

	st, _ := s.Get("shared")
	if st.TurnCount != 50 {
		t.Errorf("expected 50 turns, got %d", st.TurnCount)
	}
}
