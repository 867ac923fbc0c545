// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("k", "v").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("expected message field, got: %s", out)
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected custom field, got: %s", out)
	}
}

func TestCtx_AddsIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithConversationID(ctx, "conv-1")

	Ctx(ctx).Info().Msg("turn")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"conversation_id":"conv-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestContextAccessors_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" || ConversationIDFromContext(ctx) != "" {
		t.Error("expected empty identifiers on a bare context")
	}
	if len(GenerateCorrelationID()) != 8 {
		t.Error("expected 8 character correlation ID")
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewSlogHandler(NewTestLogger(&buf))
	logger := slog.New(h).With("service", "warmup").WithGroup("supervisor")

	logger.Warn("restarting", "attempt", 3)

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected warn level, got %s", out)
	}
	if !strings.Contains(out, `"supervisor.attempt":3`) {
		t.Errorf("expected grouped key, got %s", out)
	}
	if !strings.Contains(out, `"service":"warmup"`) {
		t.Errorf("expected pre-set attr, got %s", out)
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	var adapter watermill.LoggerAdapter = NewWatermillAdapter(NewTestLogger(&buf))

	adapter.With(watermill.LogFields{"topic": "game.updated"}).
		Error("handler failed", errors.New("boom"), watermill.LogFields{"uuid": "abc"})

	out := buf.String()
	for _, want := range []string{`"topic":"game.updated"`, `"uuid":"abc"`, `"error":"boom"`, `"message":"handler failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestSanitizeQuery(t *testing.T) {
	t.Parallel()

	if got := SanitizeQuery("cozy\nfarming\tgames"); got != "cozy farming games" {
		t.Errorf("expected control chars replaced, got %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := SanitizeQuery(long); len(got) != maxLoggedQueryLen+3 {
		t.Errorf("expected truncated length %d, got %d", maxLoggedQueryLen+3, len(got))
	}
	if got := SanitizeToken("short"); got != "[REDACTED]" {
		t.Errorf("expected full redaction, got %q", got)
	}
	if got := SanitizeToken("eyJhbGciOiJIUzI1NiJ9"); !strings.HasPrefix(got, "eyJh") {
		t.Errorf("expected prefix kept, got %q", got)
	}
}
