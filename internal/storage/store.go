// Package storage is the database abstraction layer: one SQL store over
// database/sql with two interchangeable engines (embedded SQLite and
// client/server PostgreSQL) behind a small dialect capability set.
package storage

import (
	"context"

	"expensetracker/internal/core"
)

// Store is the full CRUD and aggregation surface consumed by the service
// layer. Every operation is scoped to an explicit owner; "not found" is an
// explicit nil result, never an error. Implementations serialize
// engine-native temporal and decimal values to portable text/number forms
// before returning rows.
type Store interface {
	// CreateUser inserts a user with the given unique API key.
	CreateUser(ctx context.Context, name string, email *string, apiKey string) (*core.User, error)
	// UserByAPIKey resolves an owner from its credential. Nil when unknown.
	UserByAPIKey(ctx context.Context, apiKey string) (*core.User, error)
	// ListUsers returns all users with their API keys redacted.
	ListUsers(ctx context.Context) ([]core.User, error)
	// EnsureDefaultUser seeds a deterministic default account when the user
	// table is empty, so calls made before any registration still succeed.
	// Returns the created user, or nil when users already exist.
	EnsureDefaultUser(ctx context.Context, apiKey string) (*core.User, error)

	// InsertExpense stores a new expense and returns the materialized row
	// including the engine-assigned identifier and timestamps.
	InsertExpense(ctx context.Context, userID int64, in core.ExpenseInput) (*core.Expense, error)
	// Expenses lists the owner's expenses, newest date first. Filters are
	// optional and AND-combined.
	Expenses(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error)
	// ExpenseByID returns one row, or nil when the id is unknown or owned
	// by someone else.
	ExpenseByID(ctx context.Context, userID, id int64) (*core.Expense, error)
	// UpdateExpense applies the supplied fields and refreshes updated_at.
	// An empty patch returns the current row unchanged. Nil when not found.
	UpdateExpense(ctx context.Context, userID, id int64, patch core.ExpensePatch) (*core.Expense, error)
	// DeleteExpense reports whether a row was actually removed.
	DeleteExpense(ctx context.Context, userID, id int64) (bool, error)
	// TopExpenses returns the n highest-amount rows, ties broken by id.
	TopExpenses(ctx context.Context, userID int64, n int) ([]core.Expense, error)
	// SpendingSummary groups the owner's expenses by category, ordered by
	// total spent descending. Empty date strings impose no constraint.
	SpendingSummary(ctx context.Context, userID int64, startDate, endDate string) ([]core.CategorySummary, error)
	// Categories lists the distinct categories actually present, sorted.
	Categories(ctx context.Context, userID int64) ([]string, error)

	// UpsertBudget inserts or replaces the limit keyed on
	// (user, category, month, year).
	UpsertBudget(ctx context.Context, userID int64, in core.BudgetInput) (*core.Budget, error)
	// BudgetStatus rolls up budget vs spend for every budget row of the
	// given month. Categories without a budget row are omitted.
	BudgetStatus(ctx context.Context, userID int64, month, year int) ([]core.BudgetStatus, error)

	// Backend names the active engine ("sqlite" or "postgres").
	Backend() string
	Close() error
}
