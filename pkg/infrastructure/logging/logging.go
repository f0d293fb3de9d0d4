// Package logging builds the logr.Logger used across the module, backed by zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr.Logger.V
const (
	DEBUG = 1
	TRACE = 2
)

// Format selects the zap encoder
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// ParseLevel maps a level name to a zap level. "trace" enables V(TRACE) output.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s (expected: trace, debug, info, warn or error)", level)
	}
	return parsed, nil
}

// New creates a logger writing to stderr
func New(level string, format Format) (logr.Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	var cfg zap.Config
	switch format {
	case JSONFormat:
		cfg = zap.NewProductionConfig()
	case ConsoleFormat, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return logr.Discard(), fmt.Errorf("invalid log format: %s (expected: json or console)", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true

	zapLogger, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), nil
}

// NewWithCore wraps an existing zap core, mostly for tests that observe output
func NewWithCore(core zapcore.Core) logr.Logger {
	return zapr.NewLogger(zap.New(core))
}

// NewTestLogger returns a development logger with every verbosity enabled
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zapLogger, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLogger)
}
