// Package obslog bootstraps the *zap.Logger instance threaded through
// ingest and the HTTP layer, the way the
// pack's location service boots a single logger in main and passes it
// down through constructors rather than reaching for a package-global.
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level ("debug", "info", "warn",
// "error", ...). An unparseable level falls back to info. Debug level
// switches to a human-readable console encoder; everything else logs
// structured JSON to stdout.
func New(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if zapLevel == zapcore.DebugLevel {
		cfg.Development = true
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg.Build()
}

// NewFile builds a logger at the given level that writes structured JSON to
// the given file path instead of stdout, for the logfile config option
// (spec §6); unlike New it keeps the JSON encoder at debug level too.
// An empty path behaves exactly like New.
func NewFile(level, path string) (*zap.Logger, error) {
	if path == "" {
		return New(level)
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path, "stderr"},
	}
	return cfg.Build()
}
