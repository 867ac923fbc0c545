// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package services adapts Questline components to suture.Service.
//
// Each wrapper translates a component's lifecycle into Serve(ctx) error:
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown
//   - WarmupService: delayed keyword cache build, runs once
//   - ReindexService: startup and cron-scheduled catalog reindexing
//   - SweeperService: periodic eviction of idle conversations
//   - EventRouterService: game change consumer, rebuilt on restart
//
// Wrappers depend on small interfaces rather than concrete types so they
// can be tested with stubs.
package services
