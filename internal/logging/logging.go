// Package logging builds logcove's process-wide zap.Logger from the
// resolved LoggingConfig (internal/config): level plus output profile.
//
// Grounded on gonimbus's telemetry/server code, which already takes a
// *zap.Logger dependency throughout (pkg/telemetry.Sampler.Logger); this
// package is the constructor gonimbus's own internal/observability would
// have supplied, rebuilt directly against go.uber.org/zap since that
// package has no buildable source in the retrieval pack.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger for the given level ("debug", "info", "warn",
// "error") and profile ("STRUCTURED" for JSON, anything else for a
// human-readable console encoder).
func New(level, profile string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	var cfg zap.Config
	if strings.EqualFold(profile, "STRUCTURED") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}
