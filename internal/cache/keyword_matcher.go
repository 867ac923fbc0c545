// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package cache

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// KeywordMatch is one occurrence of a registered keyword in searched text.
type KeywordMatch struct {
	Keyword string // registered keyword, lowercased
	Data    string // value registered with the keyword (e.g. canonical name)
	Start   int    // byte offset of the match in the lowercased text
	End     int
}

// KeywordMatcher finds many keywords in text in one pass using an
// Aho-Corasick automaton. Matching is case-insensitive.
//
//	m := NewKeywordMatcher()
//	m.Add("souls-like", "Action RPG")
//	m.Add("ps5", "PlayStation 5")
//	m.Build()
//	m.FindWords("a souls-like on PS5")
type KeywordMatcher struct {
	mu       sync.RWMutex
	root     *acNode
	keywords []KeywordMatch
	built    bool
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// NewKeywordMatcher returns an empty matcher.
func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{root: newACNode()}
}

// Add registers keyword with associated data. Build must be called afterwards.
func (m *KeywordMatcher) Add(keyword, data string) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = append(m.keywords, KeywordMatch{Keyword: keyword, Data: data})
	m.built = false
}

// Build compiles the automaton. Adding more keywords invalidates it.
func (m *KeywordMatcher) Build() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built {
		return
	}

	m.root = newACNode()
	for i, kw := range m.keywords {
		node := m.root
		for _, ch := range kw.Keyword {
			next, ok := node.children[ch]
			if !ok {
				next = newACNode()
				node.children[ch] = next
			}
			node = next
		}
		node.output = append(node.output, i)
	}

	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for ch, child := range current.children {
			queue = append(queue, child)
			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
	m.built = true
}

// Len returns the number of registered keywords.
func (m *KeywordMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keywords)
}

// Find returns every keyword occurrence in text, including occurrences that
// sit inside longer words.
func (m *KeywordMatcher) Find(text string) []KeywordMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.built || len(m.keywords) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var matches []KeywordMatch
	node := m.root
	for i, ch := range lower {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]

		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			kw := m.keywords[idx]
			kw.Start = end - len(kw.Keyword)
			kw.End = end
			matches = append(matches, kw)
		}
	}
	return matches
}

// FindWords is Find restricted to matches bounded by non-alphanumeric
// characters, so "war" does not match inside "warframe".
func (m *KeywordMatcher) FindWords(text string) []KeywordMatch {
	lower := strings.ToLower(text)
	all := m.Find(text)
	out := all[:0]
	for _, km := range all {
		if isBoundary(lower, km.Start-1, true) && isBoundary(lower, km.End, false) {
			out = append(out, km)
		}
	}
	return out
}

func isBoundary(s string, pos int, before bool) bool {
	if pos < 0 || pos >= len(s) {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(s[:pos+1])
	} else {
		r, _ = utf8.DecodeRuneInString(s[pos:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
