package trademetrics

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradepulse/huddle-backend/internal/domain"
)

// The trade API has shipped several shapes for the daily summary over time:
// field renames (revenue vs totalRevenue), numbers as strings, and the trade
// breakdown as either a list or a map. Everything is normalized here so the
// rest of the codebase only ever sees typed domain.TodayMetrics.

type rawDailySummary struct {
	Revenue      json.RawMessage `json:"revenue"`
	TotalRevenue json.RawMessage `json:"totalRevenue"`

	CompletedRevenue json.RawMessage `json:"completedRevenue"`
	Completed        json.RawMessage `json:"completed"`

	NonJobRevenue json.RawMessage `json:"nonJobRevenue"`
	NonJob        json.RawMessage `json:"nonJob"`

	AdjustmentRevenue json.RawMessage `json:"adjustmentRevenue"`
	Adjustments       json.RawMessage `json:"adjustments"`

	Sales json.RawMessage `json:"sales"`

	Trades  []rawTradeSummary          `json:"trades"`
	ByTrade map[string]rawTradeSummary `json:"byTrade"`
}

type rawTradeSummary struct {
	Trade        string          `json:"trade"`
	Name         string          `json:"name"`
	Revenue      json.RawMessage `json:"revenue"`
	TotalRevenue json.RawMessage `json:"totalRevenue"`

	CompletedRevenue json.RawMessage `json:"completedRevenue"`
	Completed        json.RawMessage `json:"completed"`

	NonJobRevenue json.RawMessage `json:"nonJobRevenue"`
	NonJob        json.RawMessage `json:"nonJob"`

	AdjustmentRevenue json.RawMessage `json:"adjustmentRevenue"`
	Adjustments       json.RawMessage `json:"adjustments"`

	Sales json.RawMessage `json:"sales"`
}

// decimalField parses the first present alternative. Missing and null fields
// are zero, matching how the aggregator treats absent data.
func decimalField(alternatives ...json.RawMessage) (decimal.Decimal, error) {
	for _, raw := range alternatives {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}

		text := strings.TrimSpace(string(raw))
		if strings.HasPrefix(text, `"`) {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return decimal.Zero, err
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			return decimal.NewFromString(s)
		}

		return decimal.NewFromString(text)
	}

	return decimal.Zero, nil
}

func mapTotals(revenue, totalRevenue, completedRevenue, completed, nonJobRevenue, nonJob, adjustmentRevenue, adjustments, sales json.RawMessage) (domain.RevenueTotals, error) {
	var totals domain.RevenueTotals
	var err error

	if totals.Revenue, err = decimalField(revenue, totalRevenue); err != nil {
		return totals, err
	}
	if totals.CompletedRevenue, err = decimalField(completedRevenue, completed); err != nil {
		return totals, err
	}
	if totals.NonJobRevenue, err = decimalField(nonJobRevenue, nonJob); err != nil {
		return totals, err
	}
	if totals.AdjustmentRevenue, err = decimalField(adjustmentRevenue, adjustments); err != nil {
		return totals, err
	}
	if totals.Sales, err = decimalField(sales); err != nil {
		return totals, err
	}

	return totals, nil
}

func mapTradeTotals(raw rawTradeSummary) (domain.RevenueTotals, error) {
	return mapTotals(raw.Revenue, raw.TotalRevenue, raw.CompletedRevenue, raw.Completed,
		raw.NonJobRevenue, raw.NonJob, raw.AdjustmentRevenue, raw.Adjustments, raw.Sales)
}

func mapDailySummary(raw rawDailySummary, date time.Time) (*domain.TodayMetrics, error) {
	totals, err := mapTotals(raw.Revenue, raw.TotalRevenue, raw.CompletedRevenue, raw.Completed,
		raw.NonJobRevenue, raw.NonJob, raw.AdjustmentRevenue, raw.Adjustments, raw.Sales)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]domain.RevenueTotals)

	for _, trade := range raw.Trades {
		name := trade.Trade
		if name == "" {
			name = trade.Name
		}
		if name == "" {
			continue
		}
		tradeTotals, err := mapTradeTotals(trade)
		if err != nil {
			return nil, err
		}
		byCategory[name] = tradeTotals
	}

	for name, trade := range raw.ByTrade {
		if name == "" {
			continue
		}
		tradeTotals, err := mapTradeTotals(trade)
		if err != nil {
			return nil, err
		}
		byCategory[name] = tradeTotals
	}

	return &domain.TodayMetrics{
		Date:       date,
		Totals:     totals,
		ByCategory: byCategory,
	}, nil
}
