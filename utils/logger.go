package utils

import (
	"go.uber.org/zap"

	"fstop/config"
)

// NewLogger builds the application logger for the configured environment.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
