// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package auth validates bearer tokens issued by the identity collaborator.

Questline does not log users in. An external identity service issues
HS256-signed JWTs; this package verifies them and turns their claims into
an AuthSubject carried on the request context.

Token format:

	{
	  "sub": "user-42",          // required, becomes AuthSubject.ID
	  "username": "alice",
	  "roles": ["user"],
	  "iss": "questline-auth",   // checked when security.jwt_issuer is set
	  "exp": 1767225600
	}

Middleware:

  - Authenticate: rejects requests without a valid token (401)
  - OptionalAuth: attaches a subject when a valid token is present,
    rejects invalid tokens and lets anonymous requests through

Tokens are read from the Authorization header ("Bearer <token>") or, for
browser websocket clients that cannot set headers, from the "token"
cookie.

When security.jwt_secret is empty authentication is disabled: OptionalAuth
treats everyone as anonymous and Authenticate rejects every request.
*/
package auth
