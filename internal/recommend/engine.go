// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/conversation"
	"github.com/tomtom215/questline/internal/embedding"
	"github.com/tomtom215/questline/internal/llm"
	"github.com/tomtom215/questline/internal/metrics"
	"github.com/tomtom215/questline/internal/semantic"
	"github.com/tomtom215/questline/internal/validation"
	"github.com/tomtom215/questline/internal/vectordb"
)

// Conversation context keys carried between turns.
const (
	contextGenres      = "genres"
	contextPlatforms   = "platforms"
	contextGameModes   = "game_modes"
	contextReleaseFrom = "release_from"
	contextReleaseTo   = "release_to"
)

// QueryEmbedder turns queries and user activity into search vectors.
// embedding.Service implements it.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateUserPreferenceEmbedding(ctx context.Context, in *embedding.UserPreferenceInput) ([]float32, error)
	Name() string
}

// Reranker reorders scored recommendations before truncation.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, items []GameRecommendation, k int) []GameRecommendation
}

// Deps are the engine's collaborators. Model, Embedder, Store and
// Conversations are required; the rest may be nil.
type Deps struct {
	Model         llm.LanguageModel
	Embedder      QueryEmbedder
	Store         vectordb.Store
	Conversations *conversation.Store
	Preferences   Preferences
	Normalizer    *semantic.Normalizer
	Enhancer      *semantic.QueryEnhancer
	Keywords      *semantic.KeywordCache
	Semantic      *semantic.ConfigService
}

// Engine drives one request through Received, Analyzed, Embedded, Searched,
// Scored, Explained and Delivered. It is safe for concurrent use.
type Engine struct {
	config *Config
	deps   Deps
	logger zerolog.Logger

	rerankers []Reranker
	rrMu      sync.RWMutex
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case deps.Model == nil:
		return nil, errors.New("language model is required")
	case deps.Embedder == nil:
		return nil, errors.New("embedder is required")
	case deps.Store == nil:
		return nil, errors.New("vector store is required")
	case deps.Conversations == nil:
		return nil, errors.New("conversation store is required")
	}

	return &Engine{
		config: cfg,
		deps:   deps,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// RegisterReranker adds a reranker to the post-processing pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.rrMu.Lock()
	defer e.rrMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// turn carries one request through the pipeline.
type turn struct {
	req        Request
	caller     *Caller
	stage      Stage
	stageStart time.Time
	logger     zerolog.Logger

	state    conversation.State
	analysis *llm.QueryAnalysis
	vector   []float32
	profile  *Profile
	hits     []vectordb.SearchResult
	recs     []GameRecommendation

	message   string
	followUps []string
}

func (t *turn) advance(next Stage) {
	now := time.Now()
	metrics.RecordStage(t.stage.String(), now.Sub(t.stageStart))
	t.stage = next
	t.stageStart = now
}

// Recommend runs one turn. When req.ConversationID is empty a new
// conversation is started.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request, caller *Caller) (*Response, error) {
	return e.run(ctx, req, caller)
}

// Continue runs a follow-up turn of an existing conversation. Unknown,
// expired, or another user's conversations yield ErrConversationNotFound.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Continue(ctx context.Context, conversationID string, req Request, caller *Caller) (*Response, error) {
	state, ok := e.deps.Conversations.Get(conversationID)
	if !ok || !state.OwnedBy(caller.userID()) {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	req.ConversationID = conversationID
	return e.run(ctx, req, caller)
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) run(ctx context.Context, req Request, caller *Caller) (resp *Response, err error) {
	start := time.Now()
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if req.MaxResults == 0 {
		req.MaxResults = e.config.DefaultMaxResults
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.ConversationID != "" {
		if state, ok := e.deps.Conversations.Get(req.ConversationID); ok && !state.OwnedBy(caller.userID()) {
			return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, req.ConversationID)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Turn)
	defer cancel()

	t := &turn{req: req, caller: caller, stage: StageReceived, stageStart: start}
	t.state = e.deps.Conversations.GetOrCreate(req.ConversationID, caller.userID())
	t.logger = e.logger.With().
		Str("conversation_id", t.state.ConversationID).
		Bool("authenticated", caller.Authenticated()).
		Int("max_results", req.MaxResults).
		Logger()

	defer func() {
		metrics.RecordTurn(t.stage.String(), err, len(t.recs))
		if err != nil {
			t.logger.Warn().Err(err).Str("stage", t.stage.String()).Dur("duration", time.Since(start)).Msg("recommendation failed")
			return
		}
		t.logger.Info().
			Int("returned", len(resp.Games)).
			Bool("follow_up", resp.RequiresFollowUp).
			Dur("duration", time.Since(start)).
			Msg("recommendation complete")
	}()

	e.analyze(ctx, t)
	t.advance(StageAnalyzed)

	if err := e.embed(ctx, t); err != nil {
		return nil, err
	}
	t.advance(StageEmbedded)

	if err := e.search(ctx, t); err != nil {
		return nil, err
	}
	t.advance(StageSearched)

	e.score(ctx, t)
	t.advance(StageScored)

	e.explain(ctx, t)
	t.advance(StageExplained)

	resp = e.deliver(t)
	t.advance(StageDelivered)
	return resp, nil
}

// analyze extracts intent. Failures degrade to an unanalyzed query.
func (e *Engine) analyze(ctx context.Context, t *turn) {
	actx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Analysis)
	defer cancel()

	analysis, err := e.deps.Model.AnalyzeQuery(actx, t.req.Query)
	if err != nil || analysis == nil {
		if err != nil {
			t.logger.Warn().Err(err).Msg("query analysis failed, continuing unanalyzed")
		}
		metrics.RecordDegradation(StageAnalyzed.String())
		analysis = llm.Unanalyzed(t.req.Query)
	}
	if strings.TrimSpace(analysis.ProcessedQuery) == "" {
		analysis.ProcessedQuery = t.req.Query
	}

	if n := e.deps.Normalizer; n != nil {
		analysis.Genres = n.Normalize(ctx, semantic.CategoryGenre, analysis.Genres)
		analysis.Platforms = n.Normalize(ctx, semantic.CategoryPlatform, analysis.Platforms)
		analysis.GameModes = n.Normalize(ctx, semantic.CategoryGameMode, analysis.GameModes)
	}
	if t.state.TurnCount > 0 {
		e.inheritContext(t, analysis)
	}
	if en := e.deps.Enhancer; en != nil {
		analysis.ProcessedQuery = en.Enhance(analysis.ProcessedQuery,
			analysis.Genres, analysis.Platforms, analysis.GameModes, analysis.Moods)
	}

	t.analysis = analysis
	t.logger.Debug().
		Strs("genres", analysis.Genres).
		Strs("platforms", analysis.Platforms).
		Strs("game_modes", analysis.GameModes).
		Bool("ambiguous", analysis.IsAmbiguous).
		Float64("confidence", analysis.ConfidenceScore).
		Msg("query analyzed")
}

// inheritContext fills categories the current query left open from the
// previous turn of the conversation.
func (e *Engine) inheritContext(t *turn, a *llm.QueryAnalysis) {
	inherit := func(dst *[]string, key string) {
		if len(*dst) > 0 {
			return
		}
		if v, ok := e.deps.Conversations.GetContext(t.state.ConversationID, key); ok {
			*dst = splitCSV(v)
		}
	}
	inherit(&a.Genres, contextGenres)
	inherit(&a.Platforms, contextPlatforms)
	inherit(&a.GameModes, contextGameModes)

	if a.ReleaseDateRange.IsZero() {
		r := &llm.DateRange{}
		if v, ok := e.deps.Conversations.GetContext(t.state.ConversationID, contextReleaseFrom); ok {
			if y, err := strconv.Atoi(v); err == nil {
				r.FromYear = &y
			}
		}
		if v, ok := e.deps.Conversations.GetContext(t.state.ConversationID, contextReleaseTo); ok {
			if y, err := strconv.Atoi(v); err == nil {
				r.ToYear = &y
			}
		}
		if !r.IsZero() {
			a.ReleaseDateRange = r
		}
	}
}

// embed builds the search vector. Query embedding failure is fatal;
// preference embedding failure is not.
func (e *Engine) embed(ctx context.Context, t *turn) error {
	ectx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Embedding)
	defer cancel()

	vector, err := e.deps.Embedder.GenerateEmbedding(ectx, t.analysis.ProcessedQuery)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	t.vector = vector

	if !t.caller.Authenticated() || e.deps.Preferences == nil {
		return nil
	}

	profile, err := e.deps.Preferences.Profile(ectx, t.caller.UserID)
	if err != nil {
		t.logger.Warn().Err(err).Msg("failed to load preference profile")
		metrics.RecordDegradation(StageEmbedded.String())
		return nil
	}
	t.profile = profile

	if !t.req.IncludeFollowedUsersPreferences || profile.IsEmpty() {
		return nil
	}
	userVector, err := e.deps.Embedder.GenerateUserPreferenceEmbedding(ectx, profile.EmbeddingInput())
	if err != nil {
		if !errors.Is(err, embedding.ErrEmptyPreferences) {
			t.logger.Warn().Err(err).Msg("preference embedding failed, using query only")
			metrics.RecordDegradation(StageEmbedded.String())
		}
		return nil
	}
	blended, err := embedding.Blend(vector, userVector, e.config.QueryWeight)
	if err != nil {
		t.logger.Warn().Err(err).Msg("failed to blend preference embedding")
		metrics.RecordDegradation(StageEmbedded.String())
		return nil
	}
	t.vector = blended
	return nil
}

// search retrieves twice the requested results so scoring has room to
// reorder.
func (e *Engine) search(ctx context.Context, t *turn) error {
	sctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Search)
	defer cancel()

	hits, err := e.deps.Store.Search(sctx, e.config.Collection, t.vector, t.req.MaxResults*2,
		SearchFilter(t.analysis), t.analysis)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	t.hits = hits
	return nil
}

// SearchFilter turns extracted categories into a vector store filter. A hit
// must match at least one extracted genre, platform or game mode; the
// release range is applied by the store from the analysis.
func SearchFilter(a *llm.QueryAnalysis) vectordb.Filter {
	f := vectordb.Filter{}
	if a == nil {
		return f
	}
	if len(a.Genres) > 0 {
		f[vectordb.PayloadGenres] = strings.Join(a.Genres, ",")
	}
	if len(a.Platforms) > 0 {
		f[vectordb.PayloadPlatforms] = strings.Join(a.Platforms, ",")
	}
	if len(a.GameModes) > 0 {
		f[vectordb.PayloadGameModes] = strings.Join(a.GameModes, ",")
	}
	return f
}

// score maps hits to recommendations, applies activity boosts, ranks and
// trims to MaxResults.
func (e *Engine) score(ctx context.Context, t *turn) {
	recs := make([]GameRecommendation, 0, len(t.hits))
	ids := make([]string, 0, len(t.hits))
	for i := range t.hits {
		recs = append(recs, recommendationFromHit(&t.hits[i]))
		ids = append(ids, t.hits[i].ID)
	}

	if t.caller.Authenticated() && e.deps.Preferences != nil && len(ids) > 0 {
		activity, err := e.deps.Preferences.ActivitySet(ctx, t.caller.UserID, ids)
		if err != nil {
			t.logger.Warn().Err(err).Msg("failed to load activity matches")
			metrics.RecordDegradation(StageScored.String())
		}
		for i := range recs {
			r := &recs[i]
			r.UserActivityMatch = activity.Match(r.GameID)
			t.profile.similarHints(r, &r.UserActivityMatch)
			e.applyBoosts(r)
		}
	}
	for i := range recs {
		recs[i].ConfidenceScore = clamp01(recs[i].ConfidenceScore)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ConfidenceScore != recs[j].ConfidenceScore {
			return recs[i].ConfidenceScore > recs[j].ConfidenceScore
		}
		return recs[i].GameID < recs[j].GameID
	})

	recs = e.applyRerankers(ctx, recs, t.req.MaxResults)
	if len(recs) > t.req.MaxResults {
		recs = recs[:t.req.MaxResults]
	}
	t.recs = recs
}

func (e *Engine) applyBoosts(r *GameRecommendation) {
	m := r.UserActivityMatch
	if m.IsUserFavorite {
		r.ConfidenceScore += e.config.Boosts.Favorite
	}
	if m.IsUserLiked {
		r.ConfidenceScore += e.config.Boosts.Liked
	}
	if m.IsFromFollowedUsers {
		r.ConfidenceScore += e.config.Boosts.Followed
	}
}

// applyRerankers applies post-processing rerankers to the scored items.
func (e *Engine) applyRerankers(ctx context.Context, items []GameRecommendation, k int) []GameRecommendation {
	e.rrMu.RLock()
	rerankers := e.rerankers
	e.rrMu.RUnlock()

	for _, rr := range rerankers {
		items = rr.Rerank(ctx, items, k)
	}
	return items
}

// explain attaches reasoning, the overall message and follow-up questions.
// Language model failures fall back to generic text.
func (e *Engine) explain(ctx context.Context, t *turn) {
	authenticated := t.caller.Authenticated()
	for i := range t.recs {
		t.recs[i].Reasoning = Reasoning(&t.recs[i], t.analysis, authenticated)
	}

	cands := candidates(t.recs)
	needFollowUps := t.analysis.IsAmbiguous ||
		t.analysis.ConfidenceScore < e.config.FollowUpConfidence ||
		len(t.recs) < e.config.MinConfidentResults

	var wg sync.WaitGroup
	if len(t.recs) == 0 {
		t.message = noResultsMessage
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			xctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Explanation)
			defer cancel()
			msg, err := e.deps.Model.ExplainRecommendations(xctx, cands, t.req.Query)
			if err != nil || strings.TrimSpace(msg) == "" {
				if err != nil {
					t.logger.Warn().Err(err).Msg("explanation failed, using generic message")
				}
				metrics.RecordDegradation(StageExplained.String())
				msg = genericResponseMessage
			}
			t.message = msg
		}()
	}

	if needFollowUps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			xctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Explanation)
			defer cancel()
			questions, err := e.deps.Model.GenerateFollowUpQuestions(xctx, t.req.Query, cands)
			if err != nil || len(questions) == 0 {
				if err != nil {
					t.logger.Warn().Err(err).Msg("follow-up generation failed, using fallback questions")
				}
				metrics.RecordDegradation(StageExplained.String())
				questions = append([]string(nil), llm.FallbackFollowUps...)
			}
			t.followUps = questions
		}()
	}
	wg.Wait()
}

// deliver persists the turn and builds the response.
func (e *Engine) deliver(t *turn) *Response {
	id := t.state.ConversationID
	conv := e.deps.Conversations

	ids := make([]string, len(t.recs))
	for i := range t.recs {
		ids[i] = t.recs[i].GameID
	}
	if err := conv.Update(id, t.req.Query, ids); err != nil {
		// The conversation was evicted mid-turn; start it again under the same id.
		conv.GetOrCreate(id, t.caller.userID())
		if err := conv.Update(id, t.req.Query, ids); err != nil {
			t.logger.Warn().Err(err).Msg("failed to persist conversation turn")
		}
	}

	a := t.analysis
	setContext := func(key string, values []string) {
		if len(values) > 0 {
			_ = conv.AddContext(id, key, strings.Join(values, ","))
		}
	}
	setContext(contextGenres, a.Genres)
	setContext(contextPlatforms, a.Platforms)
	setContext(contextGameModes, a.GameModes)
	if r := a.ReleaseDateRange; !r.IsZero() {
		if r.FromYear != nil {
			_ = conv.AddContext(id, contextReleaseFrom, strconv.Itoa(*r.FromYear))
		}
		if r.ToYear != nil {
			_ = conv.AddContext(id, contextReleaseTo, strconv.Itoa(*r.ToYear))
		}
	}

	followUps := t.followUps
	if followUps == nil {
		followUps = []string{}
	}
	games := t.recs
	if games == nil {
		games = []GameRecommendation{}
	}
	return &Response{
		Games:             games,
		ResponseMessage:   t.message,
		FollowUpQuestions: followUps,
		ConversationID:    id,
		RequiresFollowUp:  len(followUps) > 0,
	}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// exampleQueries are offered to clients as starting points.
var exampleQueries = []string{
	"cozy farming games with friends",
	"dark fantasy RPG with challenging combat",
	"relaxing puzzle games for Nintendo Switch",
	"co-op shooters to play with friends on PC",
	"story-driven adventure games from the 2010s",
	"retro platformers like the 90s classics",
	"open world games with great exploration",
	"horror games that are more creepy than gory",
	"strategy games I can play in short sessions",
	"indie roguelikes with a great soundtrack",
}

// Examples returns example queries.
func (e *Engine) Examples() []string {
	return append([]string(nil), exampleQueries...)
}

// Health reports collaborator readiness. The engine is healthy when the
// vector store answers for the collection.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	h := HealthStatus{
		VectorStore:         e.deps.Store.Name(),
		Collection:          e.config.Collection,
		Embedder:            e.deps.Embedder.Name(),
		LanguageModel:       e.deps.Model.Name(),
		ActiveConversations: e.deps.Conversations.Len(),
		CheckedAt:           time.Now().UTC(),
	}
	if e.deps.Keywords != nil {
		h.KeywordCacheReady = e.deps.Keywords.IsInitialized()
	}
	if e.deps.Semantic != nil {
		h.SemanticConfigReady = e.deps.Semantic.IsLoaded()
	}

	hctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Search)
	defer cancel()
	n, err := e.deps.Store.PointCount(hctx, e.config.Collection)
	if err != nil {
		h.VectorStoreError = err.Error()
		return h
	}
	h.IndexedGames = n
	h.Healthy = true
	return h
}
