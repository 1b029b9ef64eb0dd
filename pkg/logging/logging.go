// Package logging builds the zap loggers used by liteclass.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavor.
type Config struct {
	// Mode is "development" (the default) or "production" ("prod").
	Mode string `yaml:"mode" env:"LITECLASS_LOG_MODE" validate:"omitempty,oneof=dev development prod production"`
	// Level is a zap level name; empty means debug in development and info
	// in production.
	Level string `yaml:"level" env:"LITECLASS_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		zc = zap.NewProductionConfig()
	case "", "dev", "development":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unknown mode %q", cfg.Mode)
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// Install makes l the process-wide zap logger, which runtimes and the
// default error handler fall back to. The returned function restores the
// previous logger.
func Install(l *zap.Logger) func() {
	return zap.ReplaceGlobals(l)
}
