// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/cache"
	"github.com/tomtom215/questline/internal/metrics"
)

// Store limits.
const (
	DefaultTTL        = 30 * time.Minute
	DefaultCapacity   = 10000
	MaxQueryHistory   = 10
	maxContextEntries = 32
)

// ErrNotFound is returned for unknown or expired conversations.
var ErrNotFound = errors.New("conversation not found")

// State is a snapshot of one conversation. Callers receive copies; mutate
// through the Store.
type State struct {
	ConversationID         string            `json:"conversationId"`
	UserID                 string            `json:"userId,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	LastAccessedAt         time.Time         `json:"lastAccessedAt"`
	TurnCount              int               `json:"turnCount"`
	QueryHistory           []string          `json:"queryHistory"`
	LastQuery              string            `json:"lastQuery,omitempty"`
	LastRecommendedGameIDs []string          `json:"lastRecommendedGameIds"`
	Context                map[string]string `json:"context,omitempty"`
}

// OwnedBy reports whether userID may use the conversation. Anonymous
// conversations are open to everyone.
func (s State) OwnedBy(userID string) bool {
	return s.UserID == "" || s.UserID == userID
}

func (s *State) clone() State {
	c := *s
	c.QueryHistory = append([]string(nil), s.QueryHistory...)
	c.LastRecommendedGameIDs = append([]string(nil), s.LastRecommendedGameIDs...)
	if s.Context != nil {
		c.Context = make(map[string]string, len(s.Context))
		for k, v := range s.Context {
			c.Context[k] = v
		}
	}
	return c
}

// record guards one conversation's mutable state.
type record struct {
	mu    sync.Mutex
	state State
}

// Config configures a Store.
type Config struct {
	TTL      time.Duration
	Capacity int
}

// Store holds conversations in a bounded LRU with a sliding idle TTL.
// Every access refreshes the TTL; the least recently used conversation is
// dropped when capacity is reached.
type Store struct {
	lru    *cache.LRU[*record]
	now    func() time.Time
	logger zerolog.Logger

	// createMu serializes GetOrCreate so concurrent first turns of the same
	// conversation share one record.
	createMu sync.Mutex
}

// NewStore creates a conversation store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(cfg Config, logger zerolog.Logger) *Store {
	return newStore(cfg, time.Now, logger)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newStore(cfg Config, now func() time.Time, logger zerolog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	s := &Store{
		now:    now,
		logger: logger.With().Str("component", "conversation").Logger(),
	}
	s.lru = cache.NewLRU[*record](cfg.Capacity, cfg.TTL,
		cache.WithSlidingExpiration[*record](),
		cache.WithClock[*record](now),
		cache.WithEvictCallback(func(id string, _ *record, reason cache.EvictReason) {
			metrics.RecordConversationEviction(reason.String())
			metrics.ConversationsActive.Dec()
			s.logger.Debug().Str("conversation_id", id).Str("reason", reason.String()).Msg("conversation evicted")
		}),
	)
	return s
}

// GetOrCreate returns the conversation with id, creating it for userID when
// it does not exist. An empty id creates a conversation with a new UUID.
func (s *Store) GetOrCreate(id, userID string) State {
	if id == "" {
		id = uuid.New().String()
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()
	if rec, ok := s.lru.Get(id); ok {
		return rec.touch(s.now())
	}

	now := s.now()
	rec := &record{state: State{
		ConversationID:         id,
		UserID:                 userID,
		CreatedAt:              now,
		LastAccessedAt:         now,
		QueryHistory:           []string{},
		LastRecommendedGameIDs: []string{},
		Context:                map[string]string{},
	}}
	s.lru.Set(id, rec)
	metrics.ConversationsActive.Inc()
	return rec.state.clone()
}

// Get returns the conversation and refreshes its TTL.
func (s *Store) Get(id string) (State, bool) {
	rec, ok := s.lru.Get(id)
	if !ok {
		return State{}, false
	}
	return rec.touch(s.now()), true
}

// Update records a completed turn: query history (newest last, at most
// MaxQueryHistory), last query, recommended game IDs and turn count.
func (s *Store) Update(id, query string, gameIDs []string) error {
	rec, ok := s.lru.Get(id)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	st := &rec.state
	st.QueryHistory = append(st.QueryHistory, query)
	if n := len(st.QueryHistory); n > MaxQueryHistory {
		st.QueryHistory = append([]string(nil), st.QueryHistory[n-MaxQueryHistory:]...)
	}
	st.LastQuery = query
	st.LastRecommendedGameIDs = append([]string(nil), gameIDs...)
	st.TurnCount++
	st.LastAccessedAt = s.now()
	return nil
}

// AddContext stores a key/value pair on the conversation.
func (s *Store) AddContext(id, key, value string) error {
	rec, ok := s.lru.Get(id)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if _, exists := rec.state.Context[key]; !exists && len(rec.state.Context) >= maxContextEntries {
		s.logger.Warn().Str("conversation_id", id).Str("key", key).Msg("conversation context full, dropping entry")
		return nil
	}
	if rec.state.Context == nil {
		rec.state.Context = map[string]string{}
	}
	rec.state.Context[key] = value
	rec.state.LastAccessedAt = s.now()
	return nil
}

// GetContext returns a context value.
func (s *Store) GetContext(id, key string) (string, bool) {
	rec, ok := s.lru.Get(id)
	if !ok {
		return "", false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	v, ok := rec.state.Context[key]
	if ok {
		rec.state.LastAccessedAt = s.now()
	}
	return v, ok
}

// End removes a conversation. It reports whether one existed.
func (s *Store) End(id string) bool {
	ok := s.lru.Remove(id)
	if ok {
		s.logger.Info().Str("conversation_id", id).Msg("Ended conversation")
	}
	return ok
}

// Len returns the number of held conversations, including expired ones not
// yet swept.
func (s *Store) Len() int {
	return s.lru.Len()
}

// Sweep drops expired conversations and returns how many were removed.
func (s *Store) Sweep() int {
	n := s.lru.CleanupExpired()
	if n > 0 {
		s.logger.Info().Int("count", n).Msg("Cleaned up expired conversations")
	}
	return n
}

func (r *record) touch(now time.Time) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.LastAccessedAt = now
	return r.state.clone()
}
