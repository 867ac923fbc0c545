// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

/*
Package supervisor runs Questline's long-lived goroutines under a suture v4
supervisor tree.

The tree has three layers so a crash in one cannot take down the others:

	questline (root)
	├── data-layer       keyword cache warmup, scheduled reindex,
	│                    conversation sweeper
	├── messaging-layer  websocket hub, game change event router
	└── api-layer        HTTP server

Services that fail are restarted with suture's backoff; a service that
finishes its work returns suture.ErrDoNotRestart. Supervisor events are
logged through sutureslog, bridged onto zerolog by internal/logging.

The service wrappers live in the services subpackage.
*/
package supervisor
