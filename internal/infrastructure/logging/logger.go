// Package logging builds the zap loggers used by the binaries.
package logging

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hackverse-mindmap/internal/config"
)

// New builds a logger from the logging config. The returned level can be
// changed at runtime, which the config watcher does on reload.
func New(cfg config.Logging, env config.Environment) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if env == config.Production {
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	logger, err := zc.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, level, err
	}
	return logger.With(zap.String("environment", string(env))), level, nil
}

// SetLevel applies a textual level to an atomic level. Unknown levels are
// ignored.
func SetLevel(level zap.AtomicLevel, text string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(text)); err == nil {
		level.SetLevel(l)
	}
}

func parseLevel(text string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(text)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// FromContext returns logger annotated with the request id carried by ctx.
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
