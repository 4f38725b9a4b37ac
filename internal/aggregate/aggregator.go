// Package aggregate sums daily revenue records over inclusive date ranges.
package aggregate

import (
	"errors"
	"time"

	"github.com/tradepulse/huddle-backend/internal/calendar"
	"github.com/tradepulse/huddle-backend/internal/domain"
)

// ErrInvalidRange is returned when the end date precedes the start date. The
// range is never silently swapped or reinterpreted.
var ErrInvalidRange = errors.New("aggregate: end date before start date")

// Summary is the result of aggregating daily records over a range. ByCategory
// is populated only when no category filter was applied; rows with a nil
// category count toward the grand total but appear in no category bucket, so
// the category sums can be at most the grand total.
type Summary struct {
	domain.RevenueTotals
	ByCategory map[string]domain.RevenueTotals `json:"by_category,omitempty"`
}

func recordTotals(r domain.DailyRecord) domain.RevenueTotals {
	return domain.RevenueTotals{
		Revenue:           r.Revenue,
		CompletedRevenue:  r.CompletedRevenue,
		NonJobRevenue:     r.NonJobRevenue,
		AdjustmentRevenue: r.AdjustmentRevenue,
		Sales:             r.Sales,
	}
}

// Aggregate sums records whose date falls in [start, end] inclusive. When
// category is non-nil only matching rows contribute and no breakdown is
// produced. Zero-value fields and absent days both sum as zero; the
// aggregator does not distinguish "no data" from "no activity".
func Aggregate(records []domain.DailyRecord, start, end time.Time, category *string) (Summary, error) {
	start = calendar.DateOnly(start)
	end = calendar.DateOnly(end)
	if end.Before(start) {
		return Summary{}, ErrInvalidRange
	}

	summary := Summary{}
	if category == nil {
		summary.ByCategory = make(map[string]domain.RevenueTotals)
	}

	for _, r := range records {
		day := calendar.DateOnly(r.RecordDate)
		if day.Before(start) || day.After(end) {
			continue
		}

		if category != nil {
			if r.Category == nil || *r.Category != *category {
				continue
			}
			summary.RevenueTotals = summary.RevenueTotals.Add(recordTotals(r))
			continue
		}

		summary.RevenueTotals = summary.RevenueTotals.Add(recordTotals(r))
		if r.Category != nil {
			summary.ByCategory[*r.Category] = summary.ByCategory[*r.Category].Add(recordTotals(r))
		}
	}

	return summary, nil
}
