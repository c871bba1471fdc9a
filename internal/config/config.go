package config

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// InitLogger builds the process logger. APP_ENV=production selects the JSON
// production config; LOG_LEVEL overrides the level.
func InitLogger() {
	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		cfg = zap.NewProductionConfig()
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			log.Printf("invalid LOG_LEVEL %q, keeping %s", lvl, cfg.Level.String())
		} else {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	Logger.Info("Zap logger initialized")
}
