package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// runMigrations applies the versioned migration list for one dialect in
// order. Already-applied versions are skipped, so running twice is a no-op.
// Any failure here is fatal to startup: a partial schema is not a usable
// steady state.
func runMigrations(db *sql.DB, dialect string) error {
	var (
		driver database.Driver
		err    error
	)
	switch dialect {
	case BackendSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case BackendPostgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	default:
		return fmt.Errorf("unknown dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", dialect, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run %s migrations: %w", dialect, err)
	}
	return nil
}
