package util

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// newLoggerConfig picks JSON output for production and colored console
// output elsewhere. An empty level keeps the environment default.
func newLoggerConfig(env, level string) (zap.Config, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = lvl
	}
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     env,
	}
	return config, nil
}

// InitLogger builds the global logger and installs it as zap's global
func InitLogger(env, level string) error {
	config, err := newLoggerConfig(env, level)
	if err != nil {
		return err
	}

	l, err := config.Build()
	if err != nil {
		return err
	}
	logger = l
	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
