package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the development logger with ISO8601 timestamps. An
// unknown level falls back to info.
func NewLogger(level string) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	loggerConfig.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger
}
