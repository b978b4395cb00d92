package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect is the capability set that separates the two engines: placeholder
// style, identifier return on insert, and constraint-violation detection.
// Everything else is shared SQL in SQLStore.
type Dialect interface {
	Name() string
	// Rebind rewrites ? placeholders into the engine's native style.
	Rebind(query string) string
	// InsertID runs an INSERT and returns the engine-assigned row id.
	InsertID(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error)
	// IsUniqueViolation reports whether err is a uniqueness-constraint hit.
	IsUniqueViolation(err error) bool
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return BackendSQLite }

// Rebind is the identity for SQLite, which uses ? natively.
func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) InsertID(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return BackendPostgres }

// Rebind rewrites ? placeholders to $1..$N. Queries never embed literal
// question marks outside placeholders.
func (postgresDialect) Rebind(query string) string {
	buf := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			buf = append(buf, query[i])
			continue
		}
		n++
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(n), 10)
	}
	return string(buf)
}

func (d postgresDialect) InsertID(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, d.Rebind(query)+" RETURNING id", args...).Scan(&id)
	return id, err
}

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
