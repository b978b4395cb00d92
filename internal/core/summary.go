package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CategorySummary is the aggregated spend for one category.
type CategorySummary struct {
	Category         string  `json:"category"`
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int64   `json:"transaction_count"`
}

// BudgetStatus compares a stored budget limit with the actual spend of the
// same calendar month. Remaining may be negative when over budget.
type BudgetStatus struct {
	Category       string  `json:"category"`
	LimitAmount    float64 `json:"limit_amount"`
	TotalSpent     float64 `json:"total_spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

// NewBudgetStatus derives the status of one budget row from the raw summed
// spend. A zero limit reports 0.0 percent used rather than dividing by zero.
func NewBudgetStatus(category string, limitAmount, spent float64) BudgetStatus {
	limit := decimal.NewFromFloat(limitAmount)
	sp := decimal.NewFromFloat(spent)
	pct := decimal.Zero
	if limit.IsPositive() {
		pct = sp.Div(limit).Mul(decimal.NewFromInt(100))
	}
	return BudgetStatus{
		Category:       category,
		LimitAmount:    limitAmount,
		TotalSpent:     sp.Round(2).InexactFloat64(),
		Remaining:      limit.Sub(sp).Round(2).InexactFloat64(),
		PercentageUsed: pct.Round(1).InexactFloat64(),
	}
}

// GrandTotal sums category totals, rounded to currency precision at the end
// so the full precision stays in the sum itself.
func GrandTotal(rows []CategorySummary) float64 {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.TotalSpent))
	}
	return total.Round(2).InexactFloat64()
}

// Period selects the date range for a spending summary.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodAll:
		return true
	default:
		return false
	}
}

// Range resolves the period into an inclusive start/end date pair relative
// to now. PeriodAll imposes no bounds. Weeks start on Monday.
func (p Period) Range(now time.Time) (start, end string, err error) {
	if !p.IsValid() {
		return "", "", fmt.Errorf("period must be one of weekly, monthly, all")
	}
	today := now.UTC()
	switch p {
	case PeriodWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -offset).Format(DateLayout)
		end = today.Format(DateLayout)
	case PeriodMonthly:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		end = today.Format(DateLayout)
	case PeriodAll:
	}
	return start, end, nil
}
