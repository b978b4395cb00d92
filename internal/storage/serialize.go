package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// The two engines hand back different native values for the same column:
// PostgreSQL DATE/TIMESTAMPTZ scan as time.Time and NUMERIC as text, SQLite
// stores dates and timestamps as TEXT and amounts as REAL. The scanner types
// below normalize everything to the portable forms of core: YYYY-MM-DD
// date strings, UTC RFC 3339 timestamps, plain floats.

// dateText scans a calendar date into its YYYY-MM-DD form.
type dateText string

func (d *dateText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = dateText(v.Format(core.DateLayout))
	case string:
		*d = dateText(trimDate(v))
	case []byte:
		*d = dateText(trimDate(string(v)))
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
	return nil
}

// trimDate drops any time component a TEXT column may carry.
func trimDate(s string) string {
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// timeText scans a timestamp into UTC RFC 3339 text.
type timeText string

func (t *timeText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = ""
	case time.Time:
		*t = timeText(v.UTC().Format(time.RFC3339))
	case string:
		*t = timeText(v)
	case []byte:
		*t = timeText(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

// amountValue carries a fixed-point amount through decimal so NUMERIC text
// and REAL floats come out as the same two-decimal number.
type amountValue struct {
	decimal.Decimal
}

func (a amountValue) Float() float64 {
	return a.Decimal.InexactFloat64()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// expenseColumns is the fixed select list every expense scan relies on.
const expenseColumns = "id, user_id, title, amount, category, date, notes, created_at, updated_at"

func scanExpense(r rowScanner) (*core.Expense, error) {
	var (
		e         core.Expense
		amount    amountValue
		date      dateText
		notes     sql.NullString
		createdAt timeText
		updatedAt timeText
	)
	if err := r.Scan(&e.ID, &e.UserID, &e.Title, &amount, &e.Category, &date, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Amount = amount.Float()
	e.Date = string(date)
	if notes.Valid {
		e.Notes = &notes.String
	}
	e.CreatedAt = string(createdAt)
	e.UpdatedAt = string(updatedAt)
	return &e, nil
}

const budgetColumns = "id, user_id, category, limit_amount, month, year"

func scanBudget(r rowScanner) (*core.Budget, error) {
	var (
		b     core.Budget
		limit amountValue
	)
	if err := r.Scan(&b.ID, &b.UserID, &b.Category, &limit, &b.Month, &b.Year); err != nil {
		return nil, err
	}
	b.LimitAmount = limit.Float()
	return &b, nil
}

func scanUser(r rowScanner, withKey bool) (*core.User, error) {
	var (
		u         core.User
		email     sql.NullString
		createdAt timeText
	)
	dest := []any{&u.ID, &u.Name, &email}
	if withKey {
		dest = append(dest, &u.APIKey)
	}
	dest = append(dest, &createdAt)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.CreatedAt = string(createdAt)
	return &u, nil
}

// nowStamp is the single source of insert/update timestamps: UTC, second
// precision, RFC 3339.
func nowStamp() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
