// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Feature weights for the hashing embedder.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.2
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "for": {}, "game": {}, "games": {},
	"i": {}, "in": {}, "is": {}, "it": {}, "like": {}, "me": {}, "of": {},
	"on": {}, "or": {}, "some": {}, "that": {}, "the": {}, "to": {}, "want": {},
	"with": {},
}

// HashEmbedder is a deterministic feature-hashing embedder. It needs no
// model or network, so it backs offline runs and tests. Texts sharing words
// land close together; it has no notion of synonyms.
type HashEmbedder struct{}

// NewHashEmbedder creates a hashing embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Name implements TextEmbedder.
func (*HashEmbedder) Name() string {
	return "hash"
}

// Embed implements TextEmbedder.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}
	tokens := tokenize(trimmed)
	if len(tokens) == 0 {
		// Only stop words or punctuation; hash the text as one feature.
		tokens = []string{strings.ToLower(trimmed)}
	}

	v := make([]float32, Dimensions)
	for i, tok := range tokens {
		addFeature(v, "w:"+tok, unigramWeight)
		if i > 0 {
			addFeature(v, "b:"+tokens[i-1]+" "+tok, bigramWeight)
		}
		padded := "^" + tok + "$"
		runes := []rune(padded)
		for j := 0; j+3 <= len(runes); j++ {
			addFeature(v, "c:"+string(runes[j:j+3]), trigramWeight)
		}
	}
	return Normalize(v), nil
}

// EmbedBatch implements TextEmbedder.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := h.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func addFeature(v []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(len(v))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
