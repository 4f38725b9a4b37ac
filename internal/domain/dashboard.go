package domain

import "github.com/shopspring/decimal"

// Pacing period identifiers as exposed by the API.
const (
	PeriodDay = "day"
	PeriodWTD = "wtd"
	PeriodMTD = "mtd"
	PeriodQTD = "qtd"
	PeriodYTD = "ytd"
)

// CategoryPacing is the month-to-date pacing breakdown for one trade.
type CategoryPacing struct {
	Category        string          `json:"category"`
	Actual          decimal.Decimal `json:"actual"`
	Target          decimal.Decimal `json:"target"`
	PercentToGoal   int             `json:"percent_to_goal"`
	ExpectedPercent int             `json:"expected_percent"`
	Status          PacingStatus    `json:"status"`
}

// HuddleDashboard is the full daily huddle board: actual-vs-target pacing for
// every rollup period plus the per-trade breakdown. DataComplete is false
// when the live today-figure could not be fetched and the board is rendered
// from historical data alone.
type HuddleDashboard struct {
	Date          string           `json:"date"`
	Scope         string           `json:"scope"`
	DataComplete  bool             `json:"data_complete"`
	Day           PacingResult     `json:"day"`
	WeekToDate    PacingResult     `json:"week_to_date"`
	MonthToDate   PacingResult     `json:"month_to_date"`
	QuarterToDate PacingResult     `json:"quarter_to_date"`
	YearToDate    PacingResult     `json:"year_to_date"`
	Categories    []CategoryPacing `json:"categories"`
}
