// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/questline/internal/config"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

func newTestManager(t *testing.T, issuer string) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, JWTIssuer: issuer})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"empty secret", "", true},
		{"short secret", "too-short", true},
		{"valid secret", testSecret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewJWTManager(&config.SecurityConfig{JWTSecret: tt.secret})
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, "questline-auth")

	token, err := m.GenerateToken("user-42", "alice", []string{RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	subject := claims.ToSubject()
	if subject.ID != "user-42" || subject.Username != "alice" {
		t.Errorf("expected user-42/alice, got %s/%s", subject.ID, subject.Username)
	}
	if !subject.HasRole(RoleUser) || subject.HasRole(RoleAdmin) {
		t.Errorf("unexpected roles %v", subject.Roles)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, "questline-auth")

	expired, err := m.GenerateToken("user-42", "", nil, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	other := newTestManager(t, "someone-else")
	wrongIssuer, err := other.GenerateToken("user-42", "", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	wrongSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "questline-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(strings.Repeat("x", 40)))
	if err != nil {
		t.Fatalf("sign error = %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42", Issuer: "questline-auth"},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign error = %v", err)
	}
	noSubject, err := m.GenerateToken(" ", "", nil, time.Hour)
	if err == nil || noSubject != "" {
		t.Error("expected GenerateToken to reject an empty subject")
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.token", ErrInvalidCredentials},
		{"expired", expired, ErrExpiredCredentials},
		{"wrong issuer", wrongIssuer, ErrInvalidCredentials},
		{"wrong secret", wrongSecret, ErrInvalidCredentials},
		{"missing expiry", noExpiry, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.ValidateToken(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClaims_ToSubjectFallsBackToID(t *testing.T) {
	t.Parallel()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"}}
	if got := c.ToSubject().Username; got != "user-7" {
		t.Errorf("expected username fallback user-7, got %s", got)
	}
}
