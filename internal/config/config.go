package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"expensetracker/internal/storage"
)

// Config carries every runtime setting, loaded once from the environment.
type Config struct {
	// HTTP server
	Port string

	// Backend selection: explicit "sqlite"/"postgres", or empty to infer
	// from the presence of a server password.
	DBBackend string

	// Embedded engine
	SQLitePath string

	// Client/server engine
	Postgres storage.PostgresConfig

	// Credential used to seed the first account when no users exist.
	DefaultAPIKey string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8081"),
		DBBackend:  strings.ToLower(getEnv("DB_BACKEND", "")),
		SQLitePath: getEnv("DATABASE_PATH", "./data/expenses.db"),
		Postgres: storage.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DATABASE", "expense_tracker"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", ""),
		},
		DefaultAPIKey: getEnv("DEFAULT_API_KEY", "default-local-key"),
	}
}

// Backend resolves the engine once: an explicit selection wins, otherwise a
// configured server password implies the client/server engine, otherwise
// the embedded engine. There is no error path.
func (c *Config) Backend() string {
	switch c.DBBackend {
	case storage.BackendSQLite:
		return storage.BackendSQLite
	case storage.BackendPostgres:
		return storage.BackendPostgres
	}
	if c.Postgres.Password != "" {
		return storage.BackendPostgres
	}
	return storage.BackendSQLite
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBBackend != "" && c.DBBackend != storage.BackendSQLite && c.DBBackend != storage.BackendPostgres {
		errs = append(errs, fmt.Sprintf("invalid backend '%s': must be one of [%s %s]",
			c.DBBackend, storage.BackendSQLite, storage.BackendPostgres))
	}

	switch c.Backend() {
	case storage.BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, "database path cannot be empty when using the sqlite backend")
		}
	case storage.BackendPostgres:
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres host cannot be empty")
		}
		if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid postgres port %d", c.Postgres.Port))
		}
		if c.Postgres.User == "" {
			errs = append(errs, "postgres user cannot be empty")
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres database name cannot be empty")
		}
	}

	if c.DefaultAPIKey == "" {
		errs = append(errs, "default API key cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ResolvedSQLitePath anchors a relative database path to the process
// working directory so the embedded file always lands in a known place.
func (c *Config) ResolvedSQLitePath() string {
	if filepath.IsAbs(c.SQLitePath) {
		return c.SQLitePath
	}
	abs, err := filepath.Abs(c.SQLitePath)
	if err != nil {
		return c.SQLitePath
	}
	return abs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
