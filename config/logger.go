package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger at cfg.LogLevel. Production networks get
// JSON output; local networks get the development console encoder. Output
// goes to cfg.LogFile when set, otherwise stderr.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	var zc zap.Config
	switch cfg.Network {
	case "ropsten", "homestead":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}

	logger, err := zc.Build(zap.Fields(zap.String("network", cfg.Network)))
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
