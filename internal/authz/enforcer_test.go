// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package authz

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestEnforcer(t *testing.T, admins ...string) *Enforcer {
	t.Helper()
	cfg := DefaultEnforcerConfig()
	cfg.AdminUsers = admins
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return e
}

func TestEnforcer_DefaultPolicy(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t, "alice", " ")

	tests := []struct {
		name    string
		subject string
		roles   []string
		object  string
		action  string
		want    bool
	}{
		{"user personalizes", "bob", nil, ObjectRecommendations, ActionPersonalize, true},
		{"user cannot reindex", "bob", nil, ObjectIndex, ActionWrite, false},
		{"user cannot refresh cache", "bob", nil, ObjectCache, ActionWrite, false},
		{"configured admin reindexes", "alice", nil, ObjectIndex, ActionWrite, true},
		{"configured admin refreshes cache", "alice", nil, ObjectCache, ActionWrite, true},
		{"token admin role", "carol", []string{"admin"}, ObjectIndex, ActionWrite, true},
		{"unknown object", "alice", nil, "backups", ActionWrite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.EnforceWithRoles(tt.subject, tt.roles, tt.object, tt.action)
			if err != nil {
				t.Fatalf("EnforceWithRoles() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEnforcer_RoleChangesInvalidateCache(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	if allowed, _ := e.Enforce("dave", ObjectIndex, ActionWrite); allowed {
		t.Fatal("expected dave to be denied before role assignment")
	}
	if _, err := e.AddRoleForUser("dave", "admin"); err != nil {
		t.Fatalf("AddRoleForUser() error = %v", err)
	}
	if allowed, _ := e.Enforce("dave", ObjectIndex, ActionWrite); !allowed {
		t.Error("expected cached denial to be invalidated after role assignment")
	}
	roles, err := e.GetRolesForUser("dave")
	if err != nil || len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("expected [admin], got %v (err %v)", roles, err)
	}

	if _, err := e.DeleteRoleForUser("dave", "admin"); err != nil {
		t.Fatalf("DeleteRoleForUser() error = %v", err)
	}
	if allowed, _ := e.Enforce("dave", ObjectIndex, ActionWrite); allowed {
		t.Error("expected denial after role removal")
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	policy := "# custom\np, curator, index, write\ng, erin, curator\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := NewEnforcer(&EnforcerConfig{PolicyPath: path, CacheTTL: time.Second})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if allowed, _ := e.Enforce("erin", ObjectIndex, ActionWrite); !allowed {
		t.Error("expected erin to inherit curator permissions")
	}
	if allowed, _ := e.Enforce("erin", ObjectCache, ActionWrite); allowed {
		t.Error("expected custom policy to replace the built-in one")
	}
}

func TestNewEnforcer_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("p, admin\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.csv")},
		{"malformed line", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewEnforcer(&EnforcerConfig{PolicyPath: tt.path}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
