// Package backend turns the resolved configuration into a live store.
// The engine choice is made exactly once, at process start, and is
// immutable afterwards.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/config"
	"expensetracker/internal/storage"
)

// Open creates the store for the configured engine and runs its schema
// manager. Any failure here is fatal to startup by contract: the caller
// must not continue with a partial schema.
func Open(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend() {
	case storage.BackendSQLite:
		store, err := storage.OpenSQLite(ctx, cfg.ResolvedSQLitePath())
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		return store, nil
	case storage.BackendPostgres:
		store, err := storage.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend())
	}
}

// OpenAndSeed opens the store and guarantees a usable default owner exists,
// so operations made before any explicit registration still succeed.
func OpenAndSeed(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := store.EnsureDefaultUser(ctx, cfg.DefaultAPIKey); err != nil {
		store.Close()
		return nil, fmt.Errorf("seed default user: %w", err)
	}
	slog.InfoContext(ctx, "Database backend ready", "backend", store.Backend())
	return store, nil
}
