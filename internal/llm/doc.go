// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package llm turns free-text game queries into structured QueryAnalysis
// values and writes recommendation explanations and follow-up questions.
//
// OpenAIModel talks to any OpenAI-compatible chat endpoint (Groq by default)
// behind a client-side rate limiter and a circuit breaker. User text is
// sanitized and quoted before it is placed in a prompt, and completions are
// parsed by extracting the first JSON value they contain. RuleBasedModel
// needs no network access and is used when no API key is configured.
package llm
