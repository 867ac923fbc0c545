// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package logging

import (
	"strings"
	"unicode"
)

// maxLoggedQueryLen bounds how much free text a single log entry carries.
const maxLoggedQueryLen = 120

// SanitizeQuery prepares user-supplied text for a log field: control
// characters (including newlines) become spaces and the result is truncated.
func SanitizeQuery(q string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, q)
	return truncate(strings.TrimSpace(cleaned), maxLoggedQueryLen)
}

// SanitizeToken keeps only a short prefix of a credential.
func SanitizeToken(token string) string {
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:4] + "...[REDACTED]"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
