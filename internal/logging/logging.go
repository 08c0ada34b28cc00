// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/research-trends/pkg/types"
)

// New builds a logger writing to stderr. Format "json" selects the
// production encoder; anything else is the console encoder. An empty level
// means info.
func New(cfg types.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}

	jsonFormat := strings.EqualFold(cfg.Format, "json")
	encCfg := zap.NewDevelopmentEncoderConfig()
	encoding := "console"
	if jsonFormat {
		encCfg = zap.NewProductionEncoderConfig()
		encoding = "json"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       !jsonFormat,
		DisableStacktrace: !jsonFormat,
		Encoding:          encoding,
		EncoderConfig:     encCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
