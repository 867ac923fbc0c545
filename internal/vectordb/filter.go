// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package vectordb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/questline/internal/llm"
)

// AnalysisBoost is added to a hit's score for each of genres, platforms and
// game modes where its payload matches a term extracted from the query.
const AnalysisBoost = 0.05

const (
	suffixFrom = "_from"
	suffixTo   = "_to"
)

type rangeCondition struct {
	key string
	gte *float64
	lte *float64
}

func (r rangeCondition) matches(payload map[string]string) bool {
	raw, ok := payload[r.key]
	if !ok {
		return false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}

type textCondition struct {
	key    string
	values []string // lowercased
}

func (t textCondition) matches(payload map[string]string) bool {
	field := strings.ToLower(payload[t.key])
	if field == "" {
		return false
	}
	for _, v := range t.values {
		if strings.Contains(field, v) {
			return true
		}
	}
	return false
}

// compiledFilter holds MUST range conditions and SHOULD text conditions of
// which at least one has to match when any are present.
type compiledFilter struct {
	must   []rangeCondition
	should []textCondition
}

func (f compiledFilter) empty() bool {
	return len(f.must) == 0 && len(f.should) == 0
}

func (f compiledFilter) matches(payload map[string]string) bool {
	for _, m := range f.must {
		if !m.matches(payload) {
			return false
		}
	}
	if len(f.should) == 0 {
		return true
	}
	for _, s := range f.should {
		if s.matches(payload) {
			return true
		}
	}
	return false
}

// compileFilter parses filter and folds in the analysis release range when
// the filter does not already bound release_year.
func compileFilter(filter Filter, analysis *llm.QueryAnalysis) compiledFilter {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ranges := map[string]*rangeCondition{}
	var order []string
	rangeFor := func(key string) *rangeCondition {
		if r, ok := ranges[key]; ok {
			return r
		}
		r := &rangeCondition{key: key}
		ranges[key] = r
		order = append(order, key)
		return r
	}

	var out compiledFilter
	for _, k := range keys {
		v := strings.TrimSpace(filter[k])
		if v == "" {
			continue
		}
		switch {
		case strings.HasSuffix(k, suffixFrom):
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				rangeFor(strings.TrimSuffix(k, suffixFrom)).gte = &n
			}
		case strings.HasSuffix(k, suffixTo):
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				rangeFor(strings.TrimSuffix(k, suffixTo)).lte = &n
			}
		default:
			if values := splitLower(v); len(values) > 0 {
				out.should = append(out.should, textCondition{key: k, values: values})
			}
		}
	}

	if analysis != nil && !analysis.ReleaseDateRange.IsZero() {
		if _, bounded := ranges[PayloadReleaseYear]; !bounded {
			r := rangeFor(PayloadReleaseYear)
			if y := analysis.ReleaseDateRange.FromYear; y != nil {
				n := float64(*y)
				r.gte = &n
			}
			if y := analysis.ReleaseDateRange.ToYear; y != nil {
				n := float64(*y)
				r.lte = &n
			}
		}
	}

	for _, k := range order {
		out.must = append(out.must, *ranges[k])
	}
	return out
}

// analysisBoost returns the structured boost for payload.
func analysisBoost(payload map[string]string, analysis *llm.QueryAnalysis) float64 {
	if analysis == nil {
		return 0
	}
	var boost float64
	for _, c := range []struct {
		key   string
		terms []string
	}{
		{PayloadGenres, analysis.Genres},
		{PayloadPlatforms, analysis.Platforms},
		{PayloadGameModes, analysis.GameModes},
	} {
		if len(c.terms) == 0 {
			continue
		}
		cond := textCondition{key: c.key, values: lowerAll(c.terms)}
		if cond.matches(payload) {
			boost += AnalysisBoost
		}
	}
	return boost
}

// rank sorts by score descending (ties by ID) and truncates to limit.
func rank(results []SearchResult, limit int) []SearchResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func splitLower(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func copyPayload(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
