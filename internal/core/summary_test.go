package core

import (
	"testing"
	"time"
)

func TestNewBudgetStatus(t *testing.T) {
	tests := []struct {
		name          string
		limit, spent  float64
		wantRemaining float64
		wantPct       float64
	}{
		{"under budget", 100, 30, 70, 30.0},
		{"exactly at limit", 100, 100, 0, 100.0},
		{"over budget goes negative", 100, 150, -50, 150.0},
		{"zero limit reports zero percent", 0, 42, -42, 0.0},
		{"fractional percent rounds to one decimal", 300, 100, 200, 33.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewBudgetStatus("Food", tt.limit, tt.spent)
			if st.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", st.Remaining, tt.wantRemaining)
			}
			if st.PercentageUsed != tt.wantPct {
				t.Errorf("PercentageUsed = %v, want %v", st.PercentageUsed, tt.wantPct)
			}
		})
	}
}

func TestGrandTotal(t *testing.T) {
	rows := []CategorySummary{
		{Category: "Food", TotalSpent: 10.10},
		{Category: "Travel", TotalSpent: 20.20},
		{Category: "Bills", TotalSpent: 0.01},
	}
	if got := GrandTotal(rows); got != 30.31 {
		t.Errorf("GrandTotal() = %v, want 30.31", got)
	}
	if got := GrandTotal(nil); got != 0 {
		t.Errorf("GrandTotal(nil) = %v, want 0", got)
	}
}

func TestPeriod_Range(t *testing.T) {
	// 2026-03-18 is a Wednesday.
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		wantStart string
		wantEnd   string
	}{
		{PeriodWeekly, "2026-03-16", "2026-03-18"},
		{PeriodMonthly, "2026-03-01", "2026-03-18"},
		{PeriodAll, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end, err := tt.period.Range(now)
			if err != nil {
				t.Fatalf("Range() error = %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Range() = (%s, %s), want (%s, %s)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPeriod_RangeWeekStartsMonday(t *testing.T) {
	// A Monday maps onto itself, a Sunday reaches back six days.
	monday := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	start, _, err := PeriodWeekly.Range(monday)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if start != "2026-03-16" {
		t.Errorf("weekly start on Monday = %s, want 2026-03-16", start)
	}

	sunday := time.Date(2026, 3, 22, 8, 0, 0, 0, time.UTC)
	start, _, err = PeriodWeekly.Range(sunday)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if start != "2026-03-16" {
		t.Errorf("weekly start on Sunday = %s, want 2026-03-16", start)
	}
}

func TestPeriod_RangeInvalid(t *testing.T) {
	if _, _, err := Period("yearly").Range(time.Now()); err == nil {
		t.Error("Range() accepted unknown period")
	}
}
