// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/questline/internal/semantic"
)

func TestBuildGameText(t *testing.T) {
	t.Parallel()

	released := time.Date(2017, 3, 3, 0, 0, 0, 0, time.UTC)
	in := &GameInput{
		Name:               "The Legend of Zelda: Breath of the Wild",
		Genres:             []string{"Adventure", "Role-playing (RPG)"},
		Platforms:          []string{"Nintendo Switch"},
		GameModes:          []string{"Single player"},
		PlayerPerspectives: []string{"Third person"},
		Companies:          []string{"Nintendo"},
		GameType:           "Main Game",
		ReleaseDate:        &released,
		Rating:             ratingPtr(9.46),
	}

	want := "Game: The Legend of Zelda: Breath of the Wild. Genres: Adventure, Role-playing (RPG)" +
		". Platforms: Nintendo Switch. Game Modes: Single player. Player Perspective: Third person" +
		". Companies: Nintendo. Game Type: Main Game. Released: 2017. Rating: 9.5"
	if got := BuildGameText(in, nil); got != want {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestBuildGameText_NameOnly(t *testing.T) {
	t.Parallel()

	if got := BuildGameText(&GameInput{Name: "Tetris"}, nil); got != "Game: Tetris" {
		t.Errorf("expected %q, got %q", "Game: Tetris", got)
	}
}

func TestBuildGameText_KeywordSectionsAreCapped(t *testing.T) {
	t.Parallel()

	in := &GameInput{
		Name:             "X",
		GenreKeywords:    []string{"a", "b", "c", "d", "e", "f", "g"},
		ArtStyleKeywords: []string{"p1", "p2", "p3", "p4"},
		EraKeywords:      []string{"e1", "e2", "e3"},
	}
	got := BuildGameText(in, nil)

	if !strings.Contains(got, ". Genre Characteristics: a, b, c, d, e.") {
		t.Errorf("expected 5 genre keywords, got %q", got)
	}
	if !strings.Contains(got, ". Art Style: p1, p2, p3.") {
		t.Errorf("expected 3 art style keywords, got %q", got)
	}
	if !strings.HasSuffix(got, ". Era: e1, e2") {
		t.Errorf("expected 2 era keywords at the end, got %q", got)
	}
}

func TestBuildGameText_PlatformAliases(t *testing.T) {
	t.Parallel()

	aliases := semantic.NewPlatformAliases(map[string][]string{
		"PlayStation 5": {"PS5", "PlayStation5", "Sony PS5"},
	})
	in := &GameInput{Name: "Astro Bot", Platforms: []string{"PS5", "PC"}}

	got := BuildGameText(in, aliases)
	want := "Game: Astro Bot. Platforms: PS5, PlayStation 5, PC"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
