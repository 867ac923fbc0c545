// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package embedding

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/questline/internal/semantic"
)

// Dimensions is the length of every vector this package produces.
const Dimensions = semantic.TotalDimensions

var (
	// ErrDimensionMismatch is returned when a provider yields a vector of
	// the wrong length. Vectors are never padded or truncated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidVector is returned for NaN or infinite components.
	ErrInvalidVector = errors.New("embedding contains NaN or Inf")
	// ErrEmptyText is returned for blank input text.
	ErrEmptyText = errors.New("text to embed is empty")
	// ErrEmptyPreferences is returned when a user has no activity to embed.
	ErrEmptyPreferences = errors.New("user preference input is empty")
)

// Validate checks length and finiteness.
func Validate(v []float32) error {
	if len(v) != Dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(v), Dimensions)
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w at index %d", ErrInvalidVector, i)
		}
	}
	return nil
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	mag := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / mag)
	}
	return v
}

// Dot returns the inner product over the shorter of the two vectors.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Blend returns normalize(wa*a + (1-wa)*b) as a new vector.
func Blend(a, b []float32, wa float64) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: blend %d with %d", ErrDimensionMismatch, len(a), len(b))
	}
	out := make([]float32, len(a))
	wb := 1 - wa
	for i := range a {
		out[i] = float32(wa*float64(a[i]) + wb*float64(b[i]))
	}
	return Normalize(out), nil
}

// Average returns the component-wise mean of vs.
func Average(vs [][]float32) []float32 {
	out := make([]float32, Dimensions)
	if len(vs) == 0 {
		return out
	}
	sums := make([]float64, Dimensions)
	for _, v := range vs {
		for i := 0; i < min(len(v), Dimensions); i++ {
			sums[i] += float64(v[i])
		}
	}
	for i := range out {
		out[i] = float32(sums[i] / float64(len(vs)))
	}
	return out
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
