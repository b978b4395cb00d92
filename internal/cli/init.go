// Package cli provides common initialization utilities shared by
// cmd/expensed and cmd/adduser.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"expensetracker/internal/backend"
	"expensetracker/internal/config"
	"expensetracker/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured database backend, runs migrations and
// seeds the default user. Exits the process on failure.
func OpenStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) storage.Store {
	store, err := backend.OpenAndSeed(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize database backend",
			"error", err, "backend", cfg.Backend())
		os.Exit(1)
	}
	return store
}
