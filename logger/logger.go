// Package logger builds the zap logger the CLI and library consumers
// share.
package logger

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level            string
	Encoding         string // "json" or "console"
	OutputPaths      string // comma separated list of paths
	ErrorOutputPaths string // comma separated list of paths
}

// New creates a zap logger and a cleanup function flushing buffered
// entries. Empty output paths fall back to stderr.
func New(cfg *Config) (*zap.Logger, func(), error) {
	loggerCfg := &zap.Config{}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse log level")
	}
	loggerCfg.Level = zap.NewAtomicLevelAt(level)

	loggerCfg.Encoding = cfg.Encoding
	if loggerCfg.Encoding == "" {
		loggerCfg.Encoding = "console"
	}
	loggerCfg.OutputPaths = splitPaths(cfg.OutputPaths, "stderr")
	loggerCfg.ErrorOutputPaths = splitPaths(cfg.ErrorOutputPaths, "stderr")
	loggerCfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:     "time",
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		EncodeTime:  zapcore.ISO8601TimeEncoder,
	}

	logger, err := loggerCfg.Build()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to build zap logger")
	}

	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

func splitPaths(paths, fallback string) []string {
	if paths == "" {
		return []string{fallback}
	}
	return strings.Split(paths, ",")
}
