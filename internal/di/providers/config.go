// Package providers contains dependency injection providers for the
// panelverse server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(".env")
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Panelverse Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Storage.DataDir,
		"upload_dir", cfg.Storage.UploadDir,
	)

	return log, nil
}
