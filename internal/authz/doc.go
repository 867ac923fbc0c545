// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package authz provides authorization functionality using Casbin.
//
// Authorization sits behind authentication:
//
//	Request -> auth.Authenticate -> authz.Authorize -> Handler
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "*")
//
// Objects are logical resources rather than URL paths:
//
//	p, admin, index, *                     # reindex, game change events
//	p, admin, cache, *                     # semantic cache refresh
//	p, user, recommendations, personalize  # personalized search
//
// Every authenticated subject implicitly holds the "user" role. Users named
// in security.admin_users are granted "admin" at startup, and tokens may
// carry roles of their own.
//
// Decisions are cached (go-cache) for a short TTL; role changes invalidate
// the affected subject's entries.
package authz
