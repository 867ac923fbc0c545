// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

import (
	"context"
	"path/filepath"

	"github.com/tomtom215/questline/internal/config"
)

// Watch reloads the configuration and rebuilds the keyword cache whenever
// the main mappings file changes. The watch lives for the process lifetime.
func Watch(svc *ConfigService, cache *KeywordCache) error {
	path := filepath.Join(svc.Dir(), MainMappingsFile)
	return config.WatchFile(path, func() {
		ctx := context.Background()
		if err := svc.Refresh(ctx); err != nil {
			svc.logger.Warn().Err(err).Msg("semantic config reload fell back to defaults")
		}
		if err := cache.Refresh(ctx); err != nil {
			cache.logger.Error().Err(err).Msg("keyword cache refresh after config change failed")
			return
		}
		svc.logger.Info().Str("file", path).Msg("semantic configuration reloaded")
	})
}
