// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/questline/internal/cache"
	"github.com/tomtom215/questline/internal/semantic"
)

const (
	kindGenre    = "genre"
	kindPlatform = "platform"
	kindMode     = "mode"
	kindMood     = "mood"
)

// builtinVocabulary is matched even when no semantic configuration exists.
// Values are canonical catalog names.
var builtinVocabulary = map[string]map[string]string{
	kindGenre: {
		"rpg": "Role-playing (RPG)", "role-playing": "Role-playing (RPG)", "role playing": "Role-playing (RPG)",
		"shooter": "Shooter", "fps": "Shooter", "strategy": "Strategy", "rts": "Real Time Strategy (RTS)",
		"platformer": "Platform", "puzzle": "Puzzle", "racing": "Racing", "adventure": "Adventure",
		"simulation": "Simulator", "simulator": "Simulator", "fighting": "Fighting", "sports": "Sport",
		"indie": "Indie", "roguelike": "Indie", "metroidvania": "Platform", "moba": "MOBA",
		"card game": "Card & Board Game", "point-and-click": "Point-and-click", "tactics": "Tactical",
	},
	kindMode: {
		"multiplayer": "Multiplayer", "co-op": "Co-operative", "coop": "Co-operative", "cooperative": "Co-operative",
		"single player": "Single player", "single-player": "Single player", "singleplayer": "Single player",
		"solo": "Single player", "split screen": "Split screen", "split-screen": "Split screen",
		"battle royale": "Battle Royale", "mmo": "Massively Multiplayer Online (MMO)",
	},
	kindMood: {
		"relaxing": "relaxing", "cozy": "cozy", "chill": "relaxing", "calm": "relaxing",
		"dark": "dark", "scary": "scary", "horror": "scary", "creepy": "scary",
		"funny": "funny", "happy": "happy", "wholesome": "wholesome", "sad": "emotional",
		"emotional": "emotional", "challenging": "challenging", "hard": "challenging", "difficult": "challenging",
		"intense": "intense", "atmospheric": "atmospheric", "epic": "epic", "competitive": "competitive",
	},
}

var (
	yearPattern   = regexp.MustCompile(`\b(19[7-9]\d|20\d\d)s?\b`)
	decadePattern = regexp.MustCompile(`\b(?:19)?([7-9]0)'?s\b`)
	afterWords    = []string{"after", "since", "newer than", "from"}
	beforeWords   = []string{"before", "older than", "until", "prior to"}
)

// ruleIndex is the matcher built from one configuration snapshot.
type ruleIndex struct {
	matcher  *cache.KeywordMatcher
	loadedAt time.Time
}

// RuleBasedModel is a deterministic LanguageModel. It extracts terms by
// keyword matching against the semantic configuration and writes template
// explanations, so the pipeline works without any model API.
type RuleBasedModel struct {
	config *semantic.ConfigService
	now    func() time.Time

	mu    sync.Mutex
	index *ruleIndex
}

// NewRuleBasedModel creates a rule-based model. config may be nil.
func NewRuleBasedModel(config *semantic.ConfigService) *RuleBasedModel {
	return &RuleBasedModel{config: config, now: time.Now}
}

// Name implements LanguageModel.
func (m *RuleBasedModel) Name() string {
	return "rules"
}

// AnalyzeQuery implements LanguageModel.
func (m *RuleBasedModel) AnalyzeQuery(ctx context.Context, query string) (*QueryAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	processed := strings.Join(strings.Fields(query), " ")
	a := &QueryAnalysis{ProcessedQuery: processed}

	found := map[string][]string{}
	for _, km := range m.matcher(ctx).FindWords(processed) {
		kind, value, ok := strings.Cut(km.Data, "|")
		if !ok {
			continue
		}
		found[kind] = appendFold(found[kind], value)
	}
	a.Genres = found[kindGenre]
	a.Platforms = found[kindPlatform]
	a.GameModes = found[kindMode]
	a.Moods = found[kindMood]
	a.ReleaseDateRange = m.dateRange(strings.ToLower(processed))

	hits := 0
	for _, n := range []int{len(a.Genres), len(a.Platforms), len(a.GameModes), len(a.Moods)} {
		if n > 0 {
			hits++
		}
	}
	if !a.ReleaseDateRange.IsZero() {
		hits++
	}
	a.IsAmbiguous = hits == 0
	a.ConfidenceScore = min(0.3+0.15*float64(hits), 0.95)
	return a, nil
}

// GenerateResponse implements LanguageModel.
func (m *RuleBasedModel) GenerateResponse(_ context.Context, prompt, conversationContext string) (string, error) {
	if conversationContext != "" {
		return fmt.Sprintf("Following up on %q, here is what I found for %q.", sanitize(conversationContext), sanitize(prompt)), nil
	}
	return fmt.Sprintf("Here is what I found for %q.", sanitize(prompt)), nil
}

// GenerateFollowUpQuestions implements LanguageModel. Questions target the
// aspects the query left open.
func (m *RuleBasedModel) GenerateFollowUpQuestions(ctx context.Context, query string, _ []Candidate) ([]string, error) {
	a, err := m.AnalyzeQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	var qs []string
	if len(a.Genres) == 0 {
		qs = append(qs, "Is there a genre you enjoy most?")
	}
	if len(a.GameModes) == 0 {
		qs = append(qs, "Do you prefer single-player or multiplayer games?")
	}
	if len(a.Platforms) == 0 {
		qs = append(qs, "Which platform do you play on?")
	}
	if a.ReleaseDateRange.IsZero() {
		qs = append(qs, "Are you interested in newer releases or classic games?")
	}
	if len(qs) == 0 {
		return append([]string(nil), FallbackFollowUps...), nil
	}
	return qs[:min(3, len(qs))], nil
}

// ExplainRecommendations implements LanguageModel.
func (m *RuleBasedModel) ExplainRecommendations(_ context.Context, candidates []Candidate, query string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	names := make([]string, 0, 3)
	for _, c := range candidates[:min(3, len(candidates))] {
		names = append(names, c.Name)
	}
	msg := fmt.Sprintf("Based on %q, I found %d games you might enjoy, led by %s.",
		sanitize(query), len(candidates), joinNames(names))
	if r := candidates[0].Reasoning; r != "" {
		msg += " " + candidates[0].Name + ": " + r
	}
	return msg, nil
}

// ExplainGameRecommendation implements LanguageModel.
func (m *RuleBasedModel) ExplainGameRecommendation(_ context.Context, c Candidate, query string) (string, error) {
	if c.Reasoning != "" {
		return c.Reasoning, nil
	}
	if len(c.Genres) > 0 {
		return fmt.Sprintf("%s is a %s game that matches %q.", c.Name, strings.Join(c.Genres, "/"), sanitize(query)), nil
	}
	return fmt.Sprintf("%s matches %q.", c.Name, sanitize(query)), nil
}

// matcher returns the keyword matcher, rebuilding it when the semantic
// configuration has been reloaded.
func (m *RuleBasedModel) matcher(ctx context.Context) *cache.KeywordMatcher {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cfg *semantic.KeywordConfig
	var aliases *semantic.PlatformAliases
	var loadedAt time.Time
	if m.config != nil {
		cfg = m.config.Config(ctx)
		aliases = m.config.Aliases(ctx)
		loadedAt = m.config.LastLoaded()
	}
	if m.index != nil && m.index.loadedAt.Equal(loadedAt) {
		return m.index.matcher
	}

	km := cache.NewKeywordMatcher()
	for kind, words := range builtinVocabulary {
		for word, canonical := range words {
			km.Add(word, kind+"|"+canonical)
		}
	}
	if cfg != nil {
		for name, mapping := range cfg.GenreMappings {
			km.Add(name, kindGenre+"|"+name)
			for _, mood := range mapping.MoodKeywords {
				km.Add(mood, kindMood+"|"+strings.ToLower(mood))
			}
		}
		for name := range cfg.GameModeMappings {
			km.Add(name, kindMode+"|"+name)
		}
		for name := range cfg.PlatformMappings {
			km.Add(name, kindPlatform+"|"+name)
		}
	}
	if aliases != nil {
		for canonical, names := range aliases.Table() {
			km.Add(canonical, kindPlatform+"|"+canonical)
			for _, alias := range names {
				km.Add(alias, kindPlatform+"|"+canonical)
			}
		}
	}
	km.Build()
	m.index = &ruleIndex{matcher: km, loadedAt: loadedAt}
	return km
}

// dateRange recognizes explicit years ("after 2015", "before 2000"),
// decades ("90s") and the words recent/new and classic/retro.
func (m *RuleBasedModel) dateRange(lower string) *DateRange {
	if match := decadePattern.FindStringSubmatch(lower); match != nil {
		d, _ := strconv.Atoi(match[1])
		from, to := 1900+d, 1909+d
		return &DateRange{FromYear: &from, ToYear: &to}
	}

	locs := yearPattern.FindAllStringSubmatchIndex(lower, -1)
	if len(locs) > 0 {
		years := make([]int, 0, len(locs))
		for _, loc := range locs {
			y, _ := strconv.Atoi(lower[loc[2]:loc[3]])
			years = append(years, y)
		}
		sort.Ints(years)
		if strings.HasSuffix(lower[locs[0][0]:locs[0][1]], "s") {
			from, to := years[0], years[0]+9
			return &DateRange{FromYear: &from, ToYear: &to}
		}
		if len(years) >= 2 {
			from, to := years[0], years[len(years)-1]
			return &DateRange{FromYear: &from, ToYear: &to}
		}
		before := lower[:locs[0][0]]
		y := years[0]
		switch {
		case endsWithAny(before, beforeWords):
			return &DateRange{ToYear: &y}
		case endsWithAny(before, afterWords):
			return &DateRange{FromYear: &y}
		default:
			from, to := y, y
			return &DateRange{FromYear: &from, ToYear: &to}
		}
	}

	year := m.now().Year()
	switch {
	case containsWord(lower, "recent") || containsWord(lower, "new") || containsWord(lower, "newer") || containsWord(lower, "latest"):
		from := year - 3
		return &DateRange{FromYear: &from}
	case containsWord(lower, "classic") || containsWord(lower, "retro") || containsWord(lower, "old") || containsWord(lower, "older"):
		to := 2005
		return &DateRange{ToYear: &to}
	}
	return nil
}

func endsWithAny(s string, words []string) bool {
	s = strings.TrimSpace(s)
	for _, w := range words {
		if strings.HasSuffix(s, w) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	}) {
		if f == word {
			return true
		}
	}
	return false
}

func appendFold(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
