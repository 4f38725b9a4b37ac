package pacing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tradepulse/huddle-backend/internal/domain"
)

func TestPercentToGoal(t *testing.T) {
	cases := []struct {
		actual   float64
		target   float64
		expected int
	}{
		{100, 100, 100},
		{50, 100, 50},
		{200, 100, 200},
		{33.4, 100, 33},
		{33.5, 100, 34},
		{100, 0, 0},    // zero target never divides
		{100, -500, 0}, // negative target degrades the same way
		{0, 100, 0},
	}
	for _, tc := range cases {
		got := PercentToGoal(decimal.NewFromFloat(tc.actual), decimal.NewFromFloat(tc.target))
		if got != tc.expected {
			t.Fatalf("PercentToGoal(%v, %v) expected %d, got %d", tc.actual, tc.target, tc.expected, got)
		}
	}
}

func TestExpectedPercent(t *testing.T) {
	cases := []struct {
		elapsed  int
		total    int
		expected int
	}{
		{5, 22, 23},
		{22, 22, 100},
		{0, 22, 0},
		{3, 0, 0}, // zero total degrades to zero
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tc := range cases {
		if got := ExpectedPercent(tc.elapsed, tc.total); got != tc.expected {
			t.Fatalf("ExpectedPercent(%d, %d) expected %d, got %d", tc.elapsed, tc.total, tc.expected, got)
		}
	}
}

// The worked monthly pacing example: $855,000 over 22 business days gives a
// daily target of $38,863.64; five days in the expected MTD is $194,318.20;
// $200,000 actual paces at 103%.
func TestMonthlyPacingScenario(t *testing.T) {
	monthly := decimal.NewFromInt(855000)

	daily := DailyTarget(monthly, 22)
	if !daily.Equal(decimal.NewFromFloat(38863.64)) {
		t.Fatalf("expected daily target 38863.64, got %s", daily)
	}

	expectedMTD := WeeklyTarget(daily, 5)
	if !expectedMTD.Equal(decimal.NewFromFloat(194318.2)) {
		t.Fatalf("expected MTD target 194318.2, got %s", expectedMTD)
	}

	percent := PercentToGoal(decimal.NewFromInt(200000), expectedMTD)
	if percent != 103 {
		t.Fatalf("expected pacing percent 103, got %d", percent)
	}
}

func TestDailyTargetZeroBusinessDays(t *testing.T) {
	daily := DailyTarget(decimal.NewFromInt(855000), 0)
	if !daily.IsZero() {
		t.Fatalf("zero business days should yield zero daily target, got %s", daily)
	}
}

func TestWeeklyTarget(t *testing.T) {
	weekly := WeeklyTarget(decimal.NewFromInt(1000), 4)
	if !weekly.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected weekly target 4000, got %s", weekly)
	}
}

// The quarter example: monthly targets [800k, 850k, 900k] with half of month
// two elapsed accrues an expected to-date target of 1,225,000.
func TestExpectedToDateTargetQuarterScenario(t *testing.T) {
	prior := decimal.NewFromInt(800000)
	current := decimal.NewFromInt(850000)

	expected := ExpectedToDateTarget(prior, current, 0.5)
	if !expected.Equal(decimal.NewFromInt(1225000)) {
		t.Fatalf("expected to-date target 1225000, got %s", expected)
	}
}

func TestExpectedAnnualPercentMonotonicInProgress(t *testing.T) {
	prior := decimal.NewFromInt(800000)
	current := decimal.NewFromInt(850000)
	annual := decimal.NewFromInt(10000000)

	previous := -1
	for _, progress := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0} {
		got := ExpectedAnnualPercent(prior, current, progress, annual)
		if got < previous {
			t.Fatalf("expected annual percent to be non-decreasing, got %d after %d at progress %v", got, previous, progress)
		}
		previous = got
	}
}

func TestExpectedAnnualPercentClampsProgress(t *testing.T) {
	prior := decimal.NewFromInt(500000)
	current := decimal.NewFromInt(100000)
	annual := decimal.NewFromInt(1000000)

	below := ExpectedAnnualPercent(prior, current, -0.5, annual)
	atZero := ExpectedAnnualPercent(prior, current, 0, annual)
	if below != atZero {
		t.Fatalf("negative progress should clamp to zero: %d != %d", below, atZero)
	}

	above := ExpectedAnnualPercent(prior, current, 1.5, annual)
	atOne := ExpectedAnnualPercent(prior, current, 1, annual)
	if above != atOne {
		t.Fatalf("progress above one should clamp: %d != %d", above, atOne)
	}
}

func TestExpectedAnnualPercentZeroAnnualTarget(t *testing.T) {
	got := ExpectedAnnualPercent(decimal.NewFromInt(100), decimal.NewFromInt(100), 0.5, decimal.Zero)
	if got != 0 {
		t.Fatalf("zero annual target should degrade to 0, got %d", got)
	}
}

func TestStatusHigherIsBetter(t *testing.T) {
	thresholds := Thresholds{Good: 100, Warning: 90}

	cases := []struct {
		percent  int
		expected domain.PacingStatus
	}{
		{120, domain.StatusGood},
		{100, domain.StatusGood},
		{95, domain.StatusWarning},
		{90, domain.StatusWarning},
		{89, domain.StatusBad},
		{0, domain.StatusBad},
	}
	for _, tc := range cases {
		if got := Status(tc.percent, thresholds, true); got != tc.expected {
			t.Fatalf("Status(%d) expected %s, got %s", tc.percent, tc.expected, got)
		}
	}
}

func TestStatusLowerIsBetter(t *testing.T) {
	// A lower-is-better KPI, e.g. labor percentage against budget.
	thresholds := Thresholds{Good: 100, Warning: 110}

	cases := []struct {
		percent  int
		expected domain.PacingStatus
	}{
		{80, domain.StatusGood},
		{100, domain.StatusGood},
		{105, domain.StatusWarning},
		{110, domain.StatusWarning},
		{111, domain.StatusBad},
	}
	for _, tc := range cases {
		if got := Status(tc.percent, thresholds, false); got != tc.expected {
			t.Fatalf("Status(%d) expected %s, got %s", tc.percent, tc.expected, got)
		}
	}
}
