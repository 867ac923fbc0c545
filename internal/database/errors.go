// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package database

import (
	"errors"
	"io"
)

var (
	// ErrGameNotFound is returned when a game ID is not in the catalog.
	ErrGameNotFound = errors.New("game not found")
	// ErrUnknownCategory is returned for category names without a column.
	ErrUnknownCategory = errors.New("unknown category")
)

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
