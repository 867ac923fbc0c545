// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package logging provides the zerolog-based structured logger used by every
// Questline component.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("analysis degraded")
//
// Components take a zerolog.Logger in their constructors, usually obtained
// from WithComponent. Context helpers carry request, correlation and
// conversation IDs so every line emitted during a recommendation turn can be
// joined together.
//
// Two bridges are provided for libraries with their own logging interfaces:
// SlogHandler (sutureslog) and WatermillAdapter (watermill pub/sub).
package logging
