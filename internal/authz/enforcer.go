// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package authz

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gocache "github.com/patrickmn/go-cache"

	"github.com/tomtom215/questline/internal/auth"
)

// Objects guarded by the policy.
const (
	ObjectIndex           = "index"
	ObjectCache           = "cache"
	ObjectRecommendations = "recommendations"
)

// Actions.
const (
	ActionRead        = "read"
	ActionWrite       = "write"
	ActionPersonalize = "personalize"
)

const embeddedModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

const embeddedPolicy = `
# Role permissions
p, admin, index, *
p, admin, cache, *
p, admin, recommendations, *
p, user, recommendations, personalize
`

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// PolicyPath is an optional policy CSV replacing the built-in policy.
	PolicyPath string

	// AdminUsers are assigned the admin role.
	AdminUsers []string

	// DefaultRole is implied for every authenticated subject.
	DefaultRole string

	// CacheTTL is how long to cache decisions. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		DefaultRole: auth.RoleUser,
		CacheTTL:    time.Minute,
	}
}

// Enforcer wraps the Casbin enforcer with a decision cache.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *gocache.Cache
}

// NewEnforcer creates a new authorization enforcer.
func NewEnforcer(config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = DefaultEnforcerConfig()
	}

	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	policy := embeddedPolicy
	if config.PolicyPath != "" {
		data, err := os.ReadFile(config.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", config.PolicyPath, err)
		}
		policy = string(data)
	}
	if err := loadPolicy(enforcer, policy); err != nil {
		return nil, err
	}

	e := &Enforcer{config: config, enforcer: enforcer}
	if config.CacheTTL > 0 {
		e.cache = gocache.New(config.CacheTTL, 2*config.CacheTTL)
	}

	for _, user := range config.AdminUsers {
		if user = strings.TrimSpace(user); user == "" {
			continue
		}
		if _, err := e.AddRoleForUser(user, auth.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// loadPolicy parses and loads policy CSV lines.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		ptype, rule := parts[0], parts[1:]
		switch {
		case ptype == "p" && len(rule) == 3:
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case ptype == "g" && len(rule) == 2:
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce checks if the subject can perform the action on the object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	key := cacheKey(subject, object, action)
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed.(bool), nil
		}
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.Set(key, allowed, gocache.DefaultExpiration)
	}
	return allowed, nil
}

// EnforceWithRoles checks the subject itself, then each role, then the
// default role.
func (e *Enforcer) EnforceWithRoles(subject string, roles []string, object, action string) (bool, error) {
	candidates := make([]string, 0, len(roles)+2)
	candidates = append(candidates, subject)
	candidates = append(candidates, roles...)
	if e.config.DefaultRole != "" {
		candidates = append(candidates, e.config.DefaultRole)
	}

	for _, sub := range candidates {
		if sub == "" {
			continue
		}
		allowed, err := e.Enforce(sub, object, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// AddRoleForUser assigns a role to a user.
func (e *Enforcer) AddRoleForUser(user, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("failed to add role: %w", err)
	}
	e.invalidateUser(user)
	return added, nil
}

// DeleteRoleForUser removes a role from a user.
func (e *Enforcer) DeleteRoleForUser(user, role string) (bool, error) {
	removed, err := e.enforcer.RemoveGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("failed to remove role: %w", err)
	}
	e.invalidateUser(user)
	return removed, nil
}

// GetRolesForUser returns all roles for a user.
func (e *Enforcer) GetRolesForUser(user string) ([]string, error) {
	return e.enforcer.GetRolesForUser(user)
}

func (e *Enforcer) invalidateUser(user string) {
	if e.cache == nil {
		return
	}
	prefix := user + "|"
	for key := range e.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			e.cache.Delete(key)
		}
	}
}

func cacheKey(subject, object, action string) string {
	return subject + "|" + object + "|" + action
}
