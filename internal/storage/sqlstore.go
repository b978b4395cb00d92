package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"expensetracker/internal/core"
)

// SQLStore implements Store for both engines over database/sql. Queries are
// written once with ? placeholders; everything engine-specific goes through
// the Dialect.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) Backend() string { return s.dialect.Name() }

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *SQLStore) CreateUser(ctx context.Context, name string, email *string, apiKey string) (*core.User, error) {
	now := nowStamp()
	id, err := s.dialect.InsertID(ctx, s.db,
		"INSERT INTO users (name, email, api_key, created_at) VALUES (?, ?, ?, ?)",
		name, email, apiKey, now)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return nil, fmt.Errorf("api key already registered")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &core.User{ID: id, Name: name, Email: email, APIKey: apiKey, CreatedAt: now}, nil
}

func (s *SQLStore) UserByAPIKey(ctx context.Context, apiKey string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		"SELECT id, name, email, api_key, created_at FROM users WHERE api_key = ?"), apiKey)
	u, err := scanUser(row, true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by api key: %w", err)
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *SQLStore) EnsureDefaultUser(ctx context.Context, apiKey string) (*core.User, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, nil
	}
	email := "local@localhost"
	u, err := s.CreateUser(ctx, "Default User", &email, apiKey)
	if err != nil {
		return nil, fmt.Errorf("create default user: %w", err)
	}
	slog.InfoContext(ctx, "Created default user", "id", u.ID)
	return u, nil
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

func (s *SQLStore) InsertExpense(ctx context.Context, userID int64, in core.ExpenseInput) (*core.Expense, error) {
	now := nowStamp()
	id, err := s.dialect.InsertID(ctx, s.db,
		`INSERT INTO expenses (user_id, title, amount, category, date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.Title, in.Amount, string(in.Category), in.Date, in.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &core.Expense{
		ID:        id,
		UserID:    userID,
		Title:     in.Title,
		Amount:    in.Amount,
		Category:  string(in.Category),
		Date:      in.Date,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLStore) Expenses(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error) {
	var b strings.Builder
	b.WriteString("SELECT " + expenseColumns + " FROM expenses WHERE user_id = ?")
	args := []any{userID}
	if f.Category != "" {
		b.WriteString(" AND category = ?")
		args = append(args, string(f.Category))
	}
	if f.StartDate != "" {
		b.WriteString(" AND date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		b.WriteString(" AND date <= ?")
		args = append(args, f.EndDate)
	}
	b.WriteString(" ORDER BY date DESC, id DESC LIMIT ?")
	args = append(args, f.Limit)

	return s.queryExpenses(ctx, b.String(), args...)
}

func (s *SQLStore) ExpenseByID(ctx context.Context, userID, id int64) (*core.Expense, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?"), id, userID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch expense %d: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) UpdateExpense(ctx context.Context, userID, id int64, patch core.ExpensePatch) (*core.Expense, error) {
	if patch.IsEmpty() {
		return s.ExpenseByID(ctx, userID, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Amount != nil {
		set("amount", *patch.Amount)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	set("updated_at", nowStamp())
	args = append(args, id, userID)

	query := "UPDATE expenses SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("update expense %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Unknown id or wrong owner: same answer either way.
		return nil, nil
	}
	return s.ExpenseByID(ctx, userID, id)
}

func (s *SQLStore) DeleteExpense(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		"DELETE FROM expenses WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return false, fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLStore) TopExpenses(ctx context.Context, userID int64, n int) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY amount DESC, id ASC LIMIT ?",
		userID, n)
}

func (s *SQLStore) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// ---------------------------------------------------------------------------
// Aggregations
// ---------------------------------------------------------------------------

func (s *SQLStore) SpendingSummary(ctx context.Context, userID int64, startDate, endDate string) ([]core.CategorySummary, error) {
	var b strings.Builder
	b.WriteString(`SELECT category, SUM(amount) AS total_spent, COUNT(*) AS transaction_count
		FROM expenses WHERE user_id = ?`)
	args := []any{userID}
	if startDate != "" {
		b.WriteString(" AND date >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		b.WriteString(" AND date <= ?")
		args = append(args, endDate)
	}
	b.WriteString(" GROUP BY category ORDER BY total_spent DESC")

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("spending summary: %w", err)
	}
	defer rows.Close()

	summaries := []core.CategorySummary{}
	for rows.Next() {
		var (
			cs    core.CategorySummary
			total amountValue
		)
		if err := rows.Scan(&cs.Category, &total, &cs.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		cs.TotalSpent = total.Float()
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}

func (s *SQLStore) Categories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		"SELECT DISTINCT category FROM expenses WHERE user_id = ? ORDER BY category"), userID)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ---------------------------------------------------------------------------
// Budgets
// ---------------------------------------------------------------------------

func (s *SQLStore) UpsertBudget(ctx context.Context, userID int64, in core.BudgetInput) (*core.Budget, error) {
	// Both engines resolve the uniqueness race with the same conflict
	// clause, so a concurrent upsert for the same key never duplicates a
	// row and the last commit wins.
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO budgets (user_id, category, limit_amount, month, year)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category, month, year)
		 DO UPDATE SET limit_amount = excluded.limit_amount`),
		userID, string(in.Category), in.LimitAmount, in.Month, in.Year)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	// Read-back is a separate statement; a concurrent delete in between
	// yields nil. Accepted behavior, not wrapped in a transaction.
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? AND category = ? AND month = ? AND year = ?"),
		userID, string(in.Category), in.Month, in.Year)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read back budget: %w", err)
	}
	return b, nil
}

func (s *SQLStore) BudgetStatus(ctx context.Context, userID int64, month, year int) ([]core.BudgetStatus, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? AND month = ? AND year = ? ORDER BY category"),
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("fetch budgets: %w", err)
	}
	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []core.BudgetStatus{}, nil
	}

	start, end := core.MonthInterval(month, year)
	placeholders := strings.Repeat("?, ", len(budgets)-1) + "?"
	args := []any{userID}
	for _, b := range budgets {
		args = append(args, b.Category)
	}
	args = append(args, start, end)

	sumRows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT category, SUM(amount) AS total_spent FROM expenses
		 WHERE user_id = ? AND category IN (`+placeholders+`)
		   AND date >= ? AND date < ?
		 GROUP BY category`), args...)
	if err != nil {
		return nil, fmt.Errorf("sum month spending: %w", err)
	}
	defer sumRows.Close()

	spent := map[string]float64{}
	for sumRows.Next() {
		var (
			category string
			total    amountValue
		)
		if err := sumRows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan spending row: %w", err)
		}
		spent[category] = total.Float()
	}
	if err := sumRows.Err(); err != nil {
		return nil, err
	}

	statuses := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, core.NewBudgetStatus(b.Category, b.LimitAmount, spent[b.Category]))
	}
	return statuses, nil
}
