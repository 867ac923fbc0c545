// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"reflect"
	"testing"
)

func TestPlatformAliases(t *testing.T) {
	t.Parallel()

	p := NewPlatformAliases(fixtureAliases)

	if got := p.Canonical(" snes "); got != "Super Nintendo Entertainment System" {
		t.Errorf("expected SNES canonical, got %q", got)
	}
	if got := p.Canonical("Dreamcast"); got != "Dreamcast" {
		t.Errorf("expected unknown name unchanged, got %q", got)
	}
	if !p.IsKnown("windows") || p.IsKnown("Dreamcast") {
		t.Error("unexpected IsKnown result")
	}

	want := []string{"PC (Microsoft Windows)", "PC", "Windows"}
	if got := p.All("pc"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := p.All("Dreamcast"); !reflect.DeepEqual(got, []string{"Dreamcast"}) {
		t.Errorf("expected unknown platform alone, got %v", got)
	}

	norm := p.Normalize([]string{"PS5", "PlayStation 5", "", "Windows"})
	if !reflect.DeepEqual(norm, []string{"PlayStation 5", "PC (Microsoft Windows)"}) {
		t.Errorf("unexpected normalization %v", norm)
	}

	expanded := p.ExpandForSearch([]string{"PS5", "SNES"})
	if len(expanded) != 5 {
		t.Errorf("expected 5 expanded names, got %v", expanded)
	}

	if !p.Same("PS5", "playstation 5") {
		t.Error("expected PS5 and PlayStation 5 to be the same platform")
	}
	if p.Same("PS5", "") {
		t.Error("expected blank names never to match")
	}
}

func TestPlatformAliases_ZeroValue(t *testing.T) {
	t.Parallel()

	var p PlatformAliases
	if p.Canonical("PS5") != "PS5" || p.Len() != 0 {
		t.Error("expected zero value to know no aliases")
	}
}
