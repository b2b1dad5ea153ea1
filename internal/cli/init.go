// Package cli provides process bootstrap shared by the finbot binaries and
// the finctl command tree.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"finbot/internal/config"
	"finbot/internal/log"
	"finbot/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and sets it as the
// default slog logger.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     cfg.SlogLevel(),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, builds the logger and runs
// validate. It exits the process on failure.
func LoadAndValidateConfig(component string, validate func(*config.Config) error) (*config.Config, *log.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.New(log.DefaultConfig()).WithComponent(component).Error("Failed to load configuration",
			log.NewFields().WithError(err).WithOperation(log.OpParse).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}

	logger := SetupLogger(cfg, component)
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed",
			log.NewFields().WithError(err).WithOperation(log.OpValidate).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore opens the database, applying pending migrations. It exits the
// process on failure.
func OpenStore(ctx context.Context, logger *log.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		logger.Error("Failed to open database",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
		os.Exit(1)
	}
	logger.Info("Database ready", "path", store.Path())
	return store
}
