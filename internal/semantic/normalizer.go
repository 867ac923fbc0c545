// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"strings"
)

// abbreviations expands common shorthand to fragments of catalog names.
var abbreviations = map[string][]string{
	"RPG":    {"role-playing", "role playing"},
	"FPS":    {"first-person shooter", "shooter"},
	"RTS":    {"real-time strategy", "strategy"},
	"MMO":    {"massively multiplayer", "multiplayer"},
	"MMORPG": {"massively multiplayer online role-playing", "massively multiplayer role-playing"},
	"MOBA":   {"multiplayer online battle arena"},
	"TBS":    {"turn-based strategy"},
	"JRPG":   {"japanese role-playing"},
	"FP":     {"first person", "first-person"},
	"TP":     {"third person", "third-person"},
}

// Normalizer maps free-form category terms (as produced by a language
// model) to the canonical names used by the catalog.
type Normalizer struct {
	cache  *KeywordCache
	config *ConfigService
}

// NewNormalizer creates a normalizer over the keyword cache's known values.
func NewNormalizer(cache *KeywordCache, config *ConfigService) *Normalizer {
	return &Normalizer{cache: cache, config: config}
}

// Normalize maps every value of a category to its canonical name. Values
// without a canonical match are dropped. When the category has no known
// values at all the trimmed inputs are returned unchanged.
func (n *Normalizer) Normalize(ctx context.Context, category string, values []string) []string {
	if len(values) == 0 {
		return nil
	}
	known := n.cache.KnownValues(category)
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len(known) == 0 {
			out = appendUnique(out, v)
			continue
		}
		if c := n.canonical(ctx, known, category, v); c != "" {
			out = appendUnique(out, c)
		}
	}
	return out
}

// Canonical returns the canonical name of term, or "" when none matches.
func (n *Normalizer) Canonical(ctx context.Context, category, term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	return n.canonical(ctx, n.cache.KnownValues(category), category, term)
}

func (n *Normalizer) canonical(ctx context.Context, known []string, category, term string) string {
	lt := strings.ToLower(term)

	for _, name := range known {
		if strings.EqualFold(name, term) {
			return name
		}
	}
	for _, name := range known {
		if strings.Contains(strings.ToLower(name), lt) {
			return name
		}
	}
	for _, name := range known {
		if strings.Contains(lt, strings.ToLower(name)) {
			return name
		}
	}
	if m := n.abbreviation(ctx, known, category, term); m != "" {
		return m
	}
	dehyphen := strings.ReplaceAll(lt, "-", " ")
	for _, name := range known {
		if strings.ReplaceAll(strings.ToLower(name), "-", " ") == dehyphen {
			return name
		}
	}
	return ""
}

func (n *Normalizer) abbreviation(ctx context.Context, known []string, category, term string) string {
	if category == CategoryPlatform && n.config != nil {
		aliases := n.config.Aliases(ctx)
		if aliases.IsKnown(term) {
			canonical := aliases.Canonical(term)
			for _, name := range known {
				if strings.EqualFold(name, canonical) {
					return name
				}
			}
		}
	}

	fragments, ok := abbreviations[strings.ToUpper(term)]
	if !ok {
		return ""
	}
	for _, name := range known {
		ln := strings.ToLower(name)
		for _, f := range fragments {
			if strings.Contains(ln, f) {
				return name
			}
		}
	}
	return ""
}
