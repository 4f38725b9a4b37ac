// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScopeTotal is the company-wide fallback scope for targets.
const ScopeTotal = "TOTAL"

// Target period types. Monthly targets are the canonical input; daily,
// weekly, quarterly and annual figures are derived from them using
// business-day counts.
const (
	PeriodTypeMonthly = "monthly"
	PeriodTypeDaily   = "daily"
)

// DailyRecord is one revenue snapshot row per (date, category). Category is
// a trade (HVAC, Plumbing, ...) or nil for the uncategorized bucket. Rows for
// past dates are immutable; today's row is overwritten intraday as live data
// refreshes.
type DailyRecord struct {
	ID                int64           `json:"id" db:"id"`
	RecordDate        time.Time       `json:"record_date" db:"record_date"`
	Category          *string         `json:"category" db:"category"`
	Revenue           decimal.Decimal `json:"revenue" db:"revenue"`
	CompletedRevenue  decimal.Decimal `json:"completed_revenue" db:"completed_revenue"`
	NonJobRevenue     decimal.Decimal `json:"non_job_revenue" db:"non_job_revenue"`
	AdjustmentRevenue decimal.Decimal `json:"adjustment_revenue" db:"adjustment_revenue"`
	Sales             decimal.Decimal `json:"sales" db:"sales"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Target maps (scope, period type, year, month) to a target value. Scope is
// a trade/department identifier or ScopeTotal.
type Target struct {
	ID         int64           `json:"id" db:"id"`
	Scope      string          `json:"scope" db:"scope"`
	PeriodType string          `json:"period_type" db:"period_type"`
	Year       int             `json:"year" db:"target_year"`
	Month      int             `json:"month" db:"target_month"`
	Value      decimal.Decimal `json:"value" db:"target_value"`
}

// Holiday is a date excluded from business-day counts even when it falls on
// a weekday.
type Holiday struct {
	ID          int64     `json:"id" db:"id"`
	HolidayDate time.Time `json:"holiday_date" db:"holiday_date"`
	Name        string    `json:"name" db:"name"`
}

// RevenueTotals is a set of summed revenue figures for a date range.
type RevenueTotals struct {
	Revenue           decimal.Decimal `json:"revenue"`
	CompletedRevenue  decimal.Decimal `json:"completed_revenue"`
	NonJobRevenue     decimal.Decimal `json:"non_job_revenue"`
	AdjustmentRevenue decimal.Decimal `json:"adjustment_revenue"`
	Sales             decimal.Decimal `json:"sales"`
}

// Add returns the element-wise sum of two totals.
func (t RevenueTotals) Add(other RevenueTotals) RevenueTotals {
	return RevenueTotals{
		Revenue:           t.Revenue.Add(other.Revenue),
		CompletedRevenue:  t.CompletedRevenue.Add(other.CompletedRevenue),
		NonJobRevenue:     t.NonJobRevenue.Add(other.NonJobRevenue),
		AdjustmentRevenue: t.AdjustmentRevenue.Add(other.AdjustmentRevenue),
		Sales:             t.Sales.Add(other.Sales),
	}
}

// Sub returns the element-wise difference of two totals.
func (t RevenueTotals) Sub(other RevenueTotals) RevenueTotals {
	return RevenueTotals{
		Revenue:           t.Revenue.Sub(other.Revenue),
		CompletedRevenue:  t.CompletedRevenue.Sub(other.CompletedRevenue),
		NonJobRevenue:     t.NonJobRevenue.Sub(other.NonJobRevenue),
		AdjustmentRevenue: t.AdjustmentRevenue.Sub(other.AdjustmentRevenue),
		Sales:             t.Sales.Sub(other.Sales),
	}
}

// TodayMetrics is the live figure for the current day, sourced from the
// external trade API rather than historical storage. It is never cached.
type TodayMetrics struct {
	Date       time.Time                `json:"date"`
	Totals     RevenueTotals            `json:"totals"`
	ByCategory map[string]RevenueTotals `json:"by_category"`
}

// PacingResult is the per-request output of the pacing calculator. It is
// never persisted.
type PacingResult struct {
	Period              string          `json:"period"`
	Scope               string          `json:"scope"`
	Actual              decimal.Decimal `json:"actual"`
	Target              decimal.Decimal `json:"target"`
	PercentToGoal       int             `json:"percent_to_goal"`
	ExpectedPercent     int             `json:"expected_percent"`
	Status              PacingStatus    `json:"status"`
	BusinessDaysElapsed int             `json:"business_days_elapsed"`
	BusinessDaysTotal   int             `json:"business_days_total"`
}
