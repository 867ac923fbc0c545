// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package auth

import (
	"context"
	"errors"
	"slices"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")

	// ErrAuthDisabled indicates no token secret is configured.
	ErrAuthDisabled = errors.New("authentication is not configured")
)

// Built-in roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthSubject represents an authenticated caller.
type AuthSubject struct {
	// ID is the token subject; recommendation state is keyed by it.
	ID string `json:"id"`

	// Username is the human-readable name, falling back to ID.
	Username string `json:"username"`

	// Roles contains the subject's assigned roles.
	// Used by Casbin for authorization.
	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether the subject carries role.
func (s *AuthSubject) HasRole(role string) bool {
	return s != nil && slices.Contains(s.Roles, role)
}

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// WithAuthSubject stores subject in ctx.
func WithAuthSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// GetAuthSubject returns the subject stored in ctx, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return subject
}

// UserID returns the authenticated user ID in ctx, or "".
func UserID(ctx context.Context) string {
	if s := GetAuthSubject(ctx); s != nil {
		return s.ID
	}
	return ""
}
