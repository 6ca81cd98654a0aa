// Package logger builds the application's zap logger.  Production
// gets JSON with ISO 8601 timestamps; everything else gets the colored
// development console encoder.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a logger for the given environment.  LOG_LEVEL
// overrides the default level when it parses as a zap level name.
func New(env string) *zap.Logger {
	var config zap.Config
	if env == "prod" || env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, _ := config.Build()
	return logger
}
