package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base *zap.Logger

// Init builds the process logger from the configured environment: JSON to
// stdout in production, the colored console otherwise. Called once from main
// with config.AppEnv.
func Init(env string) {
	var cfg zap.Config

	switch env {
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	base = l
}

// L returns the process logger. When Init has not run (tests, one-off
// tools) it falls back to the development config rather than reading the
// environment itself.
func L() *zap.Logger {
	if base == nil {
		Init("")
	}
	return base
}

func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
