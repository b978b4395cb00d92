package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

func newTestService(t *testing.T) (*TrackerService, int64) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	user, err := store.EnsureDefaultUser(ctx, "test-key")
	require.NoError(t, err)
	require.NotNil(t, user)

	return NewTrackerService(store), user.ID
}

func TestTrackerService_AddExpenseValidation(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, owner, core.ExpenseInput{
		Title: "", Amount: 10, Category: core.CategoryFood, Date: "2026-03-15",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation), "want ErrValidation, got %v", err)

	_, err = svc.AddExpense(ctx, owner, core.ExpenseInput{
		Title: "Coffee", Amount: 10, Category: "snacks", Date: "2026-03-15",
	})
	assert.True(t, errors.Is(err, ErrValidation))

	expense, err := svc.AddExpense(ctx, owner, core.ExpenseInput{
		Title: "Coffee", Amount: 4.5, Category: core.CategoryFood, Date: "2026-03-15",
	})
	require.NoError(t, err)
	assert.Positive(t, expense.ID)
}

func TestTrackerService_GetExpenseInvalidID(t *testing.T) {
	svc, owner := newTestService(t)

	_, err := svc.GetExpense(context.Background(), owner, 0)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.DeleteExpense(context.Background(), owner, -1)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_TopExpensesDefaults(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	for i := 0; i < core.DefaultTopN+2; i++ {
		_, err := svc.AddExpense(ctx, owner, core.ExpenseInput{
			Title: "Item", Amount: float64(i + 1), Category: core.CategoryFood, Date: "2026-03-15",
		})
		require.NoError(t, err)
	}

	top, err := svc.TopExpenses(ctx, owner, 0)
	require.NoError(t, err)
	assert.Len(t, top, core.DefaultTopN, "zero n falls back to default")

	_, err = svc.TopExpenses(ctx, owner, core.MaxTopN+1)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_SpendingSummaryGrandTotal(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	for _, e := range []struct {
		title    string
		amount   float64
		category core.Category
	}{
		{"Coffee", 4.50, core.CategoryFood},
		{"Lunch", 12.00, core.CategoryFood},
		{"Bus", 2.50, core.CategoryTravel},
	} {
		_, err := svc.AddExpense(ctx, owner, core.ExpenseInput{
			Title: e.title, Amount: e.amount, Category: e.category, Date: "2026-03-10",
		})
		require.NoError(t, err)
	}

	summary, err := svc.SpendingSummary(ctx, owner, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 19.0, summary.GrandTotal)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Food", summary.Categories[0].Category)

	_, err = svc.SpendingSummary(ctx, owner, "bad-date", "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_PeriodSummary(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	today := time.Now().UTC().Format(core.DateLayout)
	_, err := svc.AddExpense(ctx, owner, core.ExpenseInput{
		Title: "Today", Amount: 10, Category: core.CategoryFood, Date: today,
	})
	require.NoError(t, err)

	summary, err := svc.PeriodSummary(ctx, owner, "")
	require.NoError(t, err)
	assert.Equal(t, "monthly", summary.Period, "empty period defaults to monthly")
	assert.Equal(t, 10.0, summary.GrandTotal)

	all, err := svc.PeriodSummary(ctx, owner, core.PeriodAll)
	require.NoError(t, err)
	assert.Empty(t, all.StartDate)
	assert.Equal(t, 10.0, all.GrandTotal)

	_, err = svc.PeriodSummary(ctx, owner, "yearly")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_BudgetStatusDefaultsToCurrentMonth(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := svc.SetBudget(ctx, owner, core.BudgetInput{
		Category: core.CategoryFood, LimitAmount: 100,
		Month: int(now.Month()), Year: now.Year(),
	})
	require.NoError(t, err)

	report, err := svc.BudgetStatus(ctx, owner, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int(now.Month()), report.Month)
	assert.Equal(t, now.Year(), report.Year)
	require.Len(t, report.Statuses, 1)

	_, err = svc.BudgetStatus(ctx, owner, 13, 2026)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_CreateUserGeneratesKey(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Alice", nil, "")
	require.NoError(t, err)
	assert.Len(t, user.APIKey, 64, "generated keys are 32 random bytes hex encoded")

	_, err = svc.CreateUser(ctx, "", nil, "")
	assert.True(t, errors.Is(err, ErrValidation))

	// Re-registering the same key is rejected by the store.
	_, err = svc.CreateUser(ctx, "Bob", nil, user.APIKey)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestTrackerService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "test-key")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Default User", user.Name)

	missing, err := svc.Authenticate(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	empty, err := svc.Authenticate(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, empty)
}
