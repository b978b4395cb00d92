// Package services implements the caller-facing operation contracts on top
// of the storage layer: input validation, owner scoping, and translation of
// database failures into results a transport can render.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// ErrValidation marks inputs rejected before they reach the database layer.
var ErrValidation = errors.New("validation error")

// TrackerService exposes every expense, budget and user operation. The
// owner is always an explicit parameter; there is no ambient current user.
type TrackerService struct {
	store storage.Store
}

func NewTrackerService(store storage.Store) *TrackerService {
	return &TrackerService{store: store}
}

func (s *TrackerService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Backend names the active storage engine.
func (s *TrackerService) Backend() string {
	return s.store.Backend()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// CreateUser registers a user. An empty apiKey gets a generated 64-char hex
// credential.
func (s *TrackerService) CreateUser(ctx context.Context, name string, email *string, apiKey string) (*core.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, fmt.Errorf("%w: name must be 1-100 characters", ErrValidation)
	}
	if apiKey == "" {
		key, err := generateAPIKey()
		if err != nil {
			return nil, fmt.Errorf("generate api key: %w", err)
		}
		apiKey = key
	}
	user, err := s.store.CreateUser(ctx, name, email, apiKey)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created user", "id", user.ID, "name", user.Name)
	return user, nil
}

// Authenticate resolves an owner from its API key. Nil means unknown
// credential, not an error.
func (s *TrackerService) Authenticate(ctx context.Context, apiKey string) (*core.User, error) {
	if apiKey == "" {
		return nil, nil
	}
	return s.store.UserByAPIKey(ctx, apiKey)
}

func (s *TrackerService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

func (s *TrackerService) AddExpense(ctx context.Context, userID int64, in core.ExpenseInput) (*core.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	expense, err := s.store.InsertExpense(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Added expense", "id", expense.ID, "title", expense.Title, "user_id", userID)
	return expense, nil
}

func (s *TrackerService) GetExpenses(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.Expenses(ctx, userID, f)
}

func (s *TrackerService) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	return s.store.ExpenseByID(ctx, userID, id)
}

func (s *TrackerService) UpdateExpense(ctx context.Context, userID, id int64, patch core.ExpensePatch) (*core.Expense, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	expense, err := s.store.UpdateExpense(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}
	if expense != nil && !patch.IsEmpty() {
		slog.InfoContext(ctx, "Updated expense", "id", id, "user_id", userID)
	}
	return expense, nil
}

func (s *TrackerService) DeleteExpense(ctx context.Context, userID, id int64) (bool, error) {
	if id < 1 {
		return false, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	deleted, err := s.store.DeleteExpense(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if deleted {
		slog.InfoContext(ctx, "Deleted expense", "id", id, "user_id", userID)
	}
	return deleted, nil
}

func (s *TrackerService) TopExpenses(ctx context.Context, userID int64, n int) ([]core.Expense, error) {
	if n == 0 {
		n = core.DefaultTopN
	}
	if n < 1 || n > core.MaxTopN {
		return nil, fmt.Errorf("%w: n must be between 1 and %d", ErrValidation, core.MaxTopN)
	}
	return s.store.TopExpenses(ctx, userID, n)
}

func (s *TrackerService) Categories(ctx context.Context, userID int64) ([]string, error) {
	return s.store.Categories(ctx, userID)
}

// ---------------------------------------------------------------------------
// Summaries
// ---------------------------------------------------------------------------

// Summary is a period's spending grouped by category.
type Summary struct {
	Period     string                 `json:"period,omitempty"`
	StartDate  string                 `json:"start_date,omitempty"`
	EndDate    string                 `json:"end_date,omitempty"`
	GrandTotal float64                `json:"grand_total"`
	Categories []core.CategorySummary `json:"categories"`
}

// SpendingSummary aggregates by category over an optional inclusive date
// range.
func (s *TrackerService) SpendingSummary(ctx context.Context, userID int64, startDate, endDate string) (*Summary, error) {
	if startDate != "" {
		if err := core.ValidateDate(startDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if endDate != "" {
		if err := core.ValidateDate(endDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	rows, err := s.store.SpendingSummary(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &Summary{
		StartDate:  startDate,
		EndDate:    endDate,
		GrandTotal: core.GrandTotal(rows),
		Categories: rows,
	}, nil
}

// PeriodSummary resolves a named period (weekly, monthly, all) into a date
// range relative to today and summarizes it.
func (s *TrackerService) PeriodSummary(ctx context.Context, userID int64, period core.Period) (*Summary, error) {
	if period == "" {
		period = core.PeriodMonthly
	}
	start, end, err := period.Range(time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	summary, err := s.SpendingSummary(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	summary.Period = string(period)
	return summary, nil
}

// ---------------------------------------------------------------------------
// Budgets
// ---------------------------------------------------------------------------

func (s *TrackerService) SetBudget(ctx context.Context, userID int64, in core.BudgetInput) (*core.Budget, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	budget, err := s.store.UpsertBudget(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if budget != nil {
		slog.InfoContext(ctx, "Budget set",
			"category", budget.Category, "month", budget.Month, "year", budget.Year,
			"limit_amount", budget.LimitAmount, "user_id", userID)
	}
	return budget, nil
}

// BudgetReport is the per-month rollup of every stored budget.
type BudgetReport struct {
	Month    int                 `json:"month"`
	Year     int                 `json:"year"`
	Statuses []core.BudgetStatus `json:"statuses"`
}

// BudgetStatus reports budget vs spend for the given month; zero month/year
// default to the current one.
func (s *TrackerService) BudgetStatus(ctx context.Context, userID int64, month, year int) (*BudgetReport, error) {
	now := time.Now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, core.ErrInvalidMonth)
	}
	if year < core.MinYear || year > core.MaxYear {
		return nil, fmt.Errorf("%w: %v", ErrValidation, core.ErrInvalidYear)
	}
	statuses, err := s.store.BudgetStatus(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	return &BudgetReport{Month: month, Year: year, Statuses: statuses}, nil
}

// generateAPIKey returns a 64-character hex credential.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
