package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Backend names, fixed at open time for the process lifetime.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Pool bounds for the client/server engine.
const (
	pgMaxOpenConns    = 5
	pgMaxIdleConns    = 1
	pgConnMaxLifetime = time.Hour
)

// OpenSQLite opens (creating if needed) the embedded single-file engine and
// brings its schema up to date. The connection is serialized to one writer;
// file locking beyond that is the engine's own business.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db, BackendSQLite); err != nil {
		db.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Opened sqlite store", "path", path)
	return &SQLStore{db: db, dialect: sqliteDialect{}}, nil
}

// PostgresConfig is the client/server connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c PostgresConfig) dsn(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + database,
	}
	q := url.Values{}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgres ensures the target database exists, opens a bounded
// connection pool to it and brings the schema up to date. A connection
// failure surfaces here, not later mid-query.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*SQLStore, error) {
	if err := ensureDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.dsn(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}

	if err := runMigrations(db, BackendPostgres); err != nil {
		db.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Opened postgres store",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return &SQLStore{db: db, dialect: postgresDialect{}}, nil
}

// ensureDatabase creates the target database if missing, via the
// maintenance database. CREATE DATABASE has no IF NOT EXISTS, so existence
// is probed first; losing the race to another creator is fine.
func ensureDatabase(ctx context.Context, cfg PostgresConfig) error {
	admin, err := sql.Open("pgx", cfg.dsn("postgres"))
	if err != nil {
		return fmt.Errorf("open maintenance connection: %w", err)
	}
	defer admin.Close()

	var exists bool
	err = admin.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database).Scan(&exists)
	if err != nil {
		return fmt.Errorf("probe database %q: %w", cfg.Database, err)
	}
	if exists {
		return nil
	}

	_, err = admin.ExecContext(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.Database}.Sanitize())
	if err != nil && !isDuplicateDatabase(err) {
		return fmt.Errorf("create database %q: %w", cfg.Database, err)
	}
	slog.InfoContext(ctx, "Created database", "database", cfg.Database)
	return nil
}

// isDuplicateDatabase matches the error from losing a CREATE DATABASE race.
func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P04"
}
