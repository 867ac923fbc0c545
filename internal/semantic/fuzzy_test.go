// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Action", "action", 1},
		{"empty", "", "action", 0},
		{"substring ratio", "shooter", "shooters", 7.0 / 8.0},
		{"levenshtein", "kitten", "sitting", 1 - 3.0/7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBestFuzzyMatch(t *testing.T) {
	t.Parallel()

	candidates := []string{"Shooter", "Strategy", "Puzzle", "Platform"}
	tests := []struct {
		input string
		want  string
	}{
		{"Shooters", "Shooter"},
		{"strategies", "Strategy"},
		{"Platformer", "Platform"},
		{"ab", ""},
		{"Racing", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := BestFuzzyMatch(tt.input, candidates); got != tt.want {
			t.Errorf("BestFuzzyMatch(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}
