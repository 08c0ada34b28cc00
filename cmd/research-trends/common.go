// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/internal/emerging"
	"github.com/pdiddy/research-trends/internal/secrets"
	"github.com/pdiddy/research-trends/internal/store"
	"github.com/pdiddy/research-trends/pkg/types"
)

// openStore opens the configured store, or returns nil when no data
// directory is configured.
func openStore(cfg types.PipelineConfig) (*store.Store, error) {
	if cfg.Store.DataDir == "" {
		return nil, nil
	}
	return store.Open(cfg.Store.DataDir)
}

// labelGenerator returns the Anthropic label generator when labels are
// enabled and a key is available. Without a key, labels fall back to
// keywords.
func labelGenerator(cfg types.EmergingConfig) emerging.Generator {
	if !cfg.GenerateLabels {
		return nil
	}
	key := cfg.APIKey
	if key == "" {
		key = loadedSecrets.Get(secrets.AnthropicAPIKey)
	}
	gen, err := emerging.NewAnthropicGenerator(key, cfg.Model)
	if err != nil {
		logger.Warn("label generation disabled, using keyword labels", zap.Error(err))
		return nil
	}
	logger.Debug("label generator ready", zap.String("model", gen.Model()))
	return gen
}
