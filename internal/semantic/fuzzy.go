// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MinFuzzySimilarity is the lowest score BestFuzzyMatch accepts.
const MinFuzzySimilarity = 0.6

// minFuzzyInputLen is the shortest input considered for fuzzy matching.
const minFuzzyInputLen = 3

// Similarity scores two strings in [0, 1], case-insensitively. Substring
// containment scores the length ratio; otherwise the normalized Levenshtein
// distance is used.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longer, shorter := la, lb
	if shorter > longer {
		longer, shorter = shorter, longer
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return float64(shorter) / float64(longer)
	}

	return 1 - float64(Levenshtein(a, b))/float64(longer)
}

// Levenshtein returns the edit distance between a and b in runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// BestFuzzyMatch returns the candidate most similar to input, or "" when
// input is shorter than three characters or nothing reaches
// MinFuzzySimilarity. Ties resolve to the lexically smallest candidate.
func BestFuzzyMatch(input string, candidates []string) string {
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) < minFuzzyInputLen {
		return ""
	}

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best := ""
	bestScore := 0.0
	for _, c := range sorted {
		score := Similarity(input, c)
		if score > bestScore && score >= MinFuzzySimilarity {
			best = c
			bestScore = score
		}
	}
	return best
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func intersectsFold(a, b []string) bool {
	for _, s := range a {
		if containsFold(b, s) {
			return true
		}
	}
	return false
}
