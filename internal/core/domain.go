package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the portable calendar-date form used everywhere a date
	// crosses the storage boundary.
	DateLayout = "2006-01-02"

	MaxTitleLen = 200
	MaxNotesLen = 500

	DefaultFetchLimit = 50
	MaxFetchLimit     = 500

	DefaultTopN = 5
	MaxTopN     = 100

	MinYear = 2000
	MaxYear = 2100
)

var (
	ErrEmptyTitle      = errors.New("title must be 1-200 characters")
	ErrNotesTooLong    = errors.New("notes must be at most 500 characters")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrInvalidYear     = errors.New("year must be between 2000 and 2100")
)

type (
	// User owns expenses and budgets. APIKey is omitted from listings.
	User struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Email     *string `json:"email"`
		APIKey    string  `json:"api_key,omitempty"`
		CreatedAt string  `json:"created_at"`
	}

	// Expense is a fully materialized row in its portable form: the date is
	// a YYYY-MM-DD string, timestamps are UTC RFC 3339 strings and the
	// amount is an ordinary float.
	Expense struct {
		ID        int64   `json:"id"`
		UserID    int64   `json:"user_id"`
		Title     string  `json:"title"`
		Amount    float64 `json:"amount"`
		Category  string  `json:"category"`
		Date      string  `json:"date"`
		Notes     *string `json:"notes"`
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
	}

	// Budget is a stored monthly spending limit for one category.
	Budget struct {
		ID          int64   `json:"id"`
		UserID      int64   `json:"user_id"`
		Category    string  `json:"category"`
		LimitAmount float64 `json:"limit_amount"`
		Month       int     `json:"month"`
		Year        int     `json:"year"`
	}
)

// ExpenseInput carries the caller-supplied fields of a new expense.
type ExpenseInput struct {
	Title    string   `json:"title"`
	Amount   float64  `json:"amount"`
	Category Category `json:"category"`
	Date     string   `json:"date"`
	Notes    *string  `json:"notes"`
}

// Validate checks every field and normalizes the amount to currency
// precision (two decimal places).
func (in *ExpenseInput) Validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > MaxTitleLen {
		return ErrEmptyTitle
	}
	in.Title = title
	amt, err := NormalizeAmount(in.Amount)
	if err != nil {
		return err
	}
	in.Amount = amt
	if !in.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	if err := ValidateDate(in.Date); err != nil {
		return err
	}
	if in.Notes != nil && len(*in.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// ExpensePatch is a partial field set for an update. Nil fields are left
// untouched.
type ExpensePatch struct {
	Title    *string   `json:"title"`
	Amount   *float64  `json:"amount"`
	Category *Category `json:"category"`
	Date     *string   `json:"date"`
	Notes    *string   `json:"notes"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ExpensePatch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil &&
		p.Date == nil && p.Notes == nil
}

// Validate checks every supplied field, leaving absent ones alone.
func (p *ExpensePatch) Validate() error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" || len(t) > MaxTitleLen {
			return ErrEmptyTitle
		}
		p.Title = &t
	}
	if p.Amount != nil {
		amt, err := NormalizeAmount(*p.Amount)
		if err != nil {
			return err
		}
		p.Amount = &amt
	}
	if p.Category != nil && !p.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, *p.Category)
	}
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Notes != nil && len(*p.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// ExpenseFilter narrows a fetch. Zero values impose no constraint.
type ExpenseFilter struct {
	Category  Category
	StartDate string
	EndDate   string
	Limit     int
}

// Validate checks the supplied filters and applies the default limit.
func (f *ExpenseFilter) Validate() error {
	if f.Category != "" && !f.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, f.Category)
	}
	if f.StartDate != "" {
		if err := ValidateDate(f.StartDate); err != nil {
			return err
		}
	}
	if f.EndDate != "" {
		if err := ValidateDate(f.EndDate); err != nil {
			return err
		}
	}
	if f.Limit == 0 {
		f.Limit = DefaultFetchLimit
	}
	if f.Limit < 1 || f.Limit > MaxFetchLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxFetchLimit)
	}
	return nil
}

// BudgetInput carries the caller-supplied fields of a budget upsert.
type BudgetInput struct {
	Category    Category `json:"category"`
	LimitAmount float64  `json:"limit_amount"`
	Month       int      `json:"month"`
	Year        int      `json:"year"`
}

func (in *BudgetInput) Validate() error {
	if !in.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	amt, err := NormalizeAmount(in.LimitAmount)
	if err != nil {
		return err
	}
	in.LimitAmount = amt
	if in.Month < 1 || in.Month > 12 {
		return ErrInvalidMonth
	}
	if in.Year < MinYear || in.Year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// ValidateDate checks the YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// NormalizeAmount rejects non-positive amounts and rounds to currency
// precision. Rounding happens here once so every stored value already
// carries at most two decimal places.
func NormalizeAmount(v float64) (float64, error) {
	d := decimal.NewFromFloat(v).Round(2)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// MonthInterval returns the half-open calendar interval
// [YYYY-MM-01, next-month-01) as date strings. December rolls into January
// of the following year.
func MonthInterval(month, year int) (start, end string) {
	start = fmt.Sprintf("%04d-%02d-01", year, month)
	if month == 12 {
		end = fmt.Sprintf("%04d-01-01", year+1)
	} else {
		end = fmt.Sprintf("%04d-%02d-01", year, month+1)
	}
	return start, end
}
