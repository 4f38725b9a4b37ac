// Package pacing turns actuals, targets and business-day counts into
// percentages and status verdicts. Every function is total: zero or negative
// denominators degrade to a zero result instead of an error, since a
// dashboard must always render something.
package pacing

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/tradepulse/huddle-backend/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// Thresholds holds the configured status cut points. For higher-is-better
// KPIs a percent at or above Good is good and at or above Warning is close;
// for lower-is-better KPIs the comparisons invert.
type Thresholds struct {
	Good    int
	Warning int
}

// Defaults are the named degradation values applied when no target or
// business-day override is configured for a period.
type Defaults struct {
	MonthlyTarget       decimal.Decimal
	BusinessDaysInMonth int
}

// PercentToGoal returns round(actual/target*100), or 0 when the target is
// zero or negative.
func PercentToGoal(actual, target decimal.Decimal) int {
	if target.Sign() <= 0 {
		return 0
	}
	return int(actual.Div(target).Mul(oneHundred).Round(0).IntPart())
}

// ExpectedPercent returns round(elapsed/total*100), or 0 when total is zero.
func ExpectedPercent(elapsedBusinessDays, totalBusinessDays int) int {
	if totalBusinessDays <= 0 {
		return 0
	}
	return int(math.Round(float64(elapsedBusinessDays) / float64(totalBusinessDays) * 100))
}

// DailyTarget divides a monthly target across the month's business days,
// rounded to cents. A month with zero business days yields a zero daily
// target rather than a division error.
func DailyTarget(monthlyTarget decimal.Decimal, businessDaysInMonth int) decimal.Decimal {
	if businessDaysInMonth <= 0 {
		return decimal.Zero
	}
	return monthlyTarget.DivRound(decimal.NewFromInt(int64(businessDaysInMonth)), 2)
}

// WeeklyTarget scales a daily target by the week's business days.
func WeeklyTarget(dailyTarget decimal.Decimal, businessDaysInWeek int) decimal.Decimal {
	return dailyTarget.Mul(decimal.NewFromInt(int64(businessDaysInWeek)))
}

// ExpectedToDateTarget is the seasonally-weighted target accrued through a
// partial month: the completed months' targets plus the current month's
// target scaled by how much of the month has elapsed.
func ExpectedToDateTarget(priorMonthsTargetSum, currentMonthTarget decimal.Decimal, monthProgressFraction float64) decimal.Decimal {
	if monthProgressFraction < 0 {
		monthProgressFraction = 0
	}
	if monthProgressFraction > 1 {
		monthProgressFraction = 1
	}
	return priorMonthsTargetSum.Add(currentMonthTarget.Mul(decimal.NewFromFloat(monthProgressFraction)))
}

// ExpectedAnnualPercent expresses the seasonally-weighted expected
// year-to-date target as a rounded percentage of the annual target. Using the
// per-month targets rather than elapsed days alone accounts for months that
// carry an outsized share of the annual goal.
func ExpectedAnnualPercent(priorMonthsTargetSum, currentMonthTarget decimal.Decimal, monthProgressFraction float64, annualTarget decimal.Decimal) int {
	expected := ExpectedToDateTarget(priorMonthsTargetSum, currentMonthTarget, monthProgressFraction)
	return PercentToGoal(expected, annualTarget)
}

// Status classifies a pacing percent against the thresholds.
func Status(percent int, t Thresholds, higherIsBetter bool) domain.PacingStatus {
	if higherIsBetter {
		switch {
		case percent >= t.Good:
			return domain.StatusGood
		case percent >= t.Warning:
			return domain.StatusWarning
		}
		return domain.StatusBad
	}

	switch {
	case percent <= t.Good:
		return domain.StatusGood
	case percent <= t.Warning:
		return domain.StatusWarning
	}
	return domain.StatusBad
}
