// Package logging builds the application's zap logger.
//
// The terminal belongs to the UI, so debug output goes to a file in the
// config directory instead of stderr.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"todo/internal/config"
)

// New returns a debug logger writing to cfg.LogPath() when cfg.Debug is
// set, and a no-op logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if !cfg.Debug {
		return zap.NewNop(), nil
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zc.OutputPaths = []string{cfg.LogPath()}
	zc.ErrorOutputPaths = []string{cfg.LogPath()}
	zc.DisableStacktrace = true

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return logger.Named(config.AppName), nil
}
