// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"sort"
	"strings"
)

// PlatformAliases resolves platform abbreviations ("PS5", "Switch") to the
// canonical catalog names configured in PlatformAlias.json. The zero value
// knows no aliases. Safe for concurrent reads.
type PlatformAliases struct {
	raw       map[string][]string
	canonical map[string]string // lowercased canonical or alias -> canonical
}

// NewPlatformAliases indexes a canonical -> aliases table. When an alias is
// claimed by several canonical names the lexically first canonical wins.
func NewPlatformAliases(table map[string][]string) *PlatformAliases {
	p := &PlatformAliases{
		raw:       make(map[string][]string, len(table)),
		canonical: make(map[string]string),
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		aliases := table[name]
		p.raw[name] = append([]string(nil), aliases...)
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := p.canonical[key]; !ok {
			p.canonical[key] = name
		}
	}
	for _, name := range names {
		for _, alias := range table[name] {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if _, ok := p.canonical[key]; !ok {
				p.canonical[key] = name
			}
		}
	}
	return p
}

// Table returns a copy of the canonical -> aliases table.
func (p *PlatformAliases) Table() map[string][]string {
	out := make(map[string][]string, len(p.raw))
	for k, v := range p.raw {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Len returns the number of canonical platforms.
func (p *PlatformAliases) Len() int {
	return len(p.raw)
}

// Canonical returns the canonical name for a platform or alias. Unknown
// names are returned trimmed.
func (p *PlatformAliases) Canonical(name string) string {
	trimmed := strings.TrimSpace(name)
	if c, ok := p.canonical[strings.ToLower(trimmed)]; ok {
		return c
	}
	return trimmed
}

// IsKnown reports whether name is a configured canonical name or alias.
func (p *PlatformAliases) IsKnown(name string) bool {
	_, ok := p.canonical[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// All returns the canonical name followed by its aliases.
func (p *PlatformAliases) All(name string) []string {
	c := p.Canonical(name)
	aliases, ok := p.raw[c]
	if !ok {
		return []string{name}
	}
	return appendUnique([]string{c}, aliases...)
}

// Normalize maps names to canonical form, dropping blanks and duplicates.
func (p *PlatformAliases) Normalize(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = appendUnique(out, p.Canonical(n))
	}
	return out
}

// ExpandForSearch returns every alias of every given platform.
func (p *PlatformAliases) ExpandForSearch(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = appendUnique(out, p.All(n)...)
	}
	return out
}

// Same reports whether two names refer to the same platform.
func (p *PlatformAliases) Same(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return strings.EqualFold(p.Canonical(a), p.Canonical(b))
}
