// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/tomtom215/questline/internal/breaker"
	"github.com/tomtom215/questline/internal/metrics"
)

// Defaults for the Groq OpenAI-compatible endpoint.
const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// OpenAIConfig configures OpenAIModel.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// RateLimit is requests per second; 0 disables client-side limiting.
	RateLimit float64
	RateBurst int
	// CacheTTL keeps query analyses; 0 disables the cache.
	CacheTTL time.Duration
}

// OpenAIModel implements LanguageModel with chat completions against any
// OpenAI-compatible endpoint.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	limiter     *rate.Limiter
	cb          *breaker.Breaker
	analyses    *gocache.Cache
	logger      zerolog.Logger
}

// NewOpenAIModel creates a chat client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOpenAIModel(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("language model requires an API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	m := &OpenAIModel{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		cb:          breaker.New(breaker.DefaultConfig("llm")),
		logger:      logger.With().Str("component", "llm").Str("model", cfg.Model).Logger(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.CacheTTL > 0 {
		m.analyses = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return m, nil
}

// Name implements LanguageModel.
func (m *OpenAIModel) Name() string {
	return "openai:" + m.model
}

// AnalyzeQuery implements LanguageModel.
func (m *OpenAIModel) AnalyzeQuery(ctx context.Context, query string) (*QueryAnalysis, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if m.analyses != nil {
		if cached, ok := m.analyses.Get(key); ok {
			return cloneAnalysis(cached.(*QueryAnalysis)), nil
		}
	}

	text, err := m.complete(ctx, "analyze", analysisPrompt(query))
	if err != nil {
		return nil, err
	}
	analysis, err := parseAnalysis(text, query)
	if err != nil {
		m.logger.Debug().Err(err).Str("completion", truncate(text, 200)).Msg("unparseable analysis")
		return nil, err
	}
	if m.analyses != nil {
		m.analyses.SetDefault(key, cloneAnalysis(analysis))
	}
	return analysis, nil
}

// GenerateResponse implements LanguageModel.
func (m *OpenAIModel) GenerateResponse(ctx context.Context, prompt, conversationContext string) (string, error) {
	return m.complete(ctx, "respond", responsePrompt(prompt, conversationContext))
}

// GenerateFollowUpQuestions implements LanguageModel. A completion without a
// usable JSON array yields FallbackFollowUps.
func (m *OpenAIModel) GenerateFollowUpQuestions(ctx context.Context, query string, candidates []Candidate) ([]string, error) {
	text, err := m.complete(ctx, "follow_up", followUpPrompt(query, candidates))
	if err != nil {
		return nil, err
	}
	questions, err := parseQuestions(text)
	if err != nil {
		m.logger.Debug().Err(err).Msg("follow-up questions unparseable, using fallback")
		return append([]string(nil), FallbackFollowUps...), nil
	}
	return questions, nil
}

// ExplainRecommendations implements LanguageModel.
func (m *OpenAIModel) ExplainRecommendations(ctx context.Context, candidates []Candidate, query string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	return m.complete(ctx, "explain", explainPrompt(candidates, query))
}

// ExplainGameRecommendation implements LanguageModel.
func (m *OpenAIModel) ExplainGameRecommendation(ctx context.Context, candidate Candidate, query string) (string, error) {
	return m.complete(ctx, "explain_game", explainGamePrompt(candidate, query))
}

// complete sends one user message and returns the trimmed completion text.
func (m *OpenAIModel) complete(ctx context.Context, operation, user string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	start := time.Now()
	resp, err := breaker.Execute(m.cb, func() (openai.ChatCompletionResponse, error) {
		return m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: m.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			MaxTokens:   m.maxTokens,
			Temperature: m.temperature,
		})
	})
	if err == nil && (len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "") {
		err = ErrMalformedResponse
	}
	metrics.RecordLLM(operation, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// analysisWire accepts the field spellings models actually produce.
type analysisWire struct {
	Genres           []string                   `json:"genres"`
	Platforms        []string                   `json:"platforms"`
	GameModes        []string                   `json:"gameModes"`
	Moods            []string                   `json:"moods"`
	ReleaseDateRange map[string]json.RawMessage `json:"releaseDateRange"`
	ProcessedQuery   string                     `json:"processedQuery"`
	IsAmbiguous      bool                       `json:"isAmbiguous"`
	ConfidenceScore  *float64                   `json:"confidenceScore"`
}

func parseAnalysis(text, query string) (*QueryAnalysis, error) {
	raw, ok := extractJSON(text, '{')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	var w analysisWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	a := &QueryAnalysis{
		Genres:         cleanList(w.Genres),
		Platforms:      cleanList(w.Platforms),
		GameModes:      cleanList(w.GameModes),
		Moods:          cleanList(w.Moods),
		ProcessedQuery: strings.TrimSpace(w.ProcessedQuery),
		IsAmbiguous:    w.IsAmbiguous,
	}
	if a.ProcessedQuery == "" {
		a.ProcessedQuery = query
	}
	a.ConfidenceScore = 0.5
	if w.ConfidenceScore != nil {
		a.ConfidenceScore = min(max(*w.ConfidenceScore, 0), 1)
	}
	if len(w.ReleaseDateRange) > 0 {
		r := &DateRange{
			FromYear: yearOf(w.ReleaseDateRange, "fromYear", "from"),
			ToYear:   yearOf(w.ReleaseDateRange, "toYear", "to"),
		}
		if !r.IsZero() {
			a.ReleaseDateRange = r
		}
	}
	return a, nil
}

// yearOf reads the first of keys holding a year as a number or as a string
// beginning with four digits ("2015", "2015-01-01").
func yearOf(fields map[string]json.RawMessage, keys ...string) *int {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
			y := int(n)
			return &y
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && len(s) >= 4 {
			if y, err := strconv.Atoi(s[:4]); err == nil {
				return &y
			}
		}
	}
	return nil
}

func parseQuestions(text string) ([]string, error) {
	raw, ok := extractJSON(text, '[')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array", ErrMalformedResponse)
	}
	var qs []string
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	qs = cleanList(qs)
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: empty question list", ErrMalformedResponse)
	}
	return qs[:min(3, len(qs))], nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func cloneAnalysis(a *QueryAnalysis) *QueryAnalysis {
	c := *a
	c.Genres = append([]string(nil), a.Genres...)
	c.Platforms = append([]string(nil), a.Platforms...)
	c.GameModes = append([]string(nil), a.GameModes...)
	c.Moods = append([]string(nil), a.Moods...)
	if a.ReleaseDateRange != nil {
		r := *a.ReleaseDateRange
		c.ReleaseDateRange = &r
	}
	return &c
}
