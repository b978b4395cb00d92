package config

import (
	"strings"
	"testing"

	"expensetracker/internal/storage"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid sqlite config",
			config: Config{
				Port:          "8081",
				DBBackend:     "sqlite",
				SQLitePath:    "./test.db",
				DefaultAPIKey: "default-local-key",
			},
			wantErr: false,
		},
		{
			name: "valid postgres config",
			config: Config{
				Port:      "8081",
				DBBackend: "postgres",
				Postgres: storage.PostgresConfig{
					Host:     "localhost",
					Port:     5432,
					User:     "postgres",
					Password: "secret",
					Database: "expense_tracker",
				},
				DefaultAPIKey: "default-local-key",
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:          "abc",
				DBBackend:     "sqlite",
				SQLitePath:    "./test.db",
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:          "70000",
				DBBackend:     "sqlite",
				SQLitePath:    "./test.db",
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid backend",
			config: Config{
				Port:          "8081",
				DBBackend:     "oracle",
				SQLitePath:    "./test.db",
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "invalid backend 'oracle': must be one of [sqlite postgres]",
		},
		{
			name: "sqlite backend missing database path",
			config: Config{
				Port:          "8081",
				DBBackend:     "sqlite",
				SQLitePath:    "",
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "postgres backend missing host",
			config: Config{
				Port:      "8081",
				DBBackend: "postgres",
				Postgres: storage.PostgresConfig{
					Port:     5432,
					User:     "postgres",
					Database: "expense_tracker",
				},
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "postgres host cannot be empty",
		},
		{
			name: "postgres backend missing user",
			config: Config{
				Port:      "8081",
				DBBackend: "postgres",
				Postgres: storage.PostgresConfig{
					Host:     "localhost",
					Port:     5432,
					Database: "expense_tracker",
				},
				DefaultAPIKey: "k",
			},
			wantErr:     true,
			errorString: "postgres user cannot be empty",
		},
		{
			name: "empty default api key",
			config: Config{
				Port:          "8081",
				DBBackend:     "sqlite",
				SQLitePath:    "./test.db",
				DefaultAPIKey: "",
			},
			wantErr:     true,
			errorString: "default API key cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_Backend(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "explicit sqlite wins over password",
			config: Config{DBBackend: "sqlite", Postgres: storage.PostgresConfig{Password: "secret"}},
			want:   storage.BackendSQLite,
		},
		{
			name:   "explicit postgres without password",
			config: Config{DBBackend: "postgres"},
			want:   storage.BackendPostgres,
		},
		{
			name:   "password implies postgres",
			config: Config{Postgres: storage.PostgresConfig{Password: "secret"}},
			want:   storage.BackendPostgres,
		},
		{
			name:   "nothing configured falls back to sqlite",
			config: Config{},
			want:   storage.BackendSQLite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Backend(); got != tt.want {
				t.Errorf("Config.Backend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_BACKEND", "DATABASE_PATH",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER",
		"POSTGRES_PASSWORD", "POSTGRES_DATABASE", "POSTGRES_SSLMODE",
		"DEFAULT_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Load() Port = %v, want 8081", cfg.Port)
	}
	if cfg.SQLitePath != "./data/expenses.db" {
		t.Errorf("Load() SQLitePath = %v, want ./data/expenses.db", cfg.SQLitePath)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Load() Postgres.Port = %v, want 5432", cfg.Postgres.Port)
	}
	if cfg.DefaultAPIKey != "default-local-key" {
		t.Errorf("Load() DefaultAPIKey = %v, want default-local-key", cfg.DefaultAPIKey)
	}
	if cfg.Backend() != storage.BackendSQLite {
		t.Errorf("Load() Backend() = %v, want sqlite", cfg.Backend())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_BACKEND", "POSTGRES")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Load() Port = %v, want 9090", cfg.Port)
	}
	if cfg.DBBackend != "postgres" {
		t.Errorf("Load() DBBackend = %v, want postgres (lowercased)", cfg.DBBackend)
	}
	if cfg.Postgres.Port != 5433 {
		t.Errorf("Load() Postgres.Port = %v, want 5433", cfg.Postgres.Port)
	}
	if cfg.Backend() != storage.BackendPostgres {
		t.Errorf("Load() Backend() = %v, want postgres", cfg.Backend())
	}
}
