package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradepulse/huddle-backend/internal/cache"
	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/domain"
)

type fakeRecordRepo struct {
	records    []domain.DailyRecord
	categories []string
}

func (f *fakeRecordRepo) FetchRange(ctx context.Context, start, end time.Time, category *string) ([]domain.DailyRecord, error) {
	var out []domain.DailyRecord
	for _, r := range f.records {
		if r.RecordDate.Before(start) || r.RecordDate.After(end) {
			continue
		}
		if category != nil && (r.Category == nil || *r.Category != *category) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRecordRepo) UpsertBatch(ctx context.Context, records []domain.DailyRecord) error {
	return nil
}

func (f *fakeRecordRepo) Categories(ctx context.Context) ([]string, error) {
	return f.categories, nil
}

type fakeTargetRepo struct {
	targets []domain.Target
}

func (f *fakeTargetRepo) FetchTargets(ctx context.Context, scope, periodType string, year int) ([]domain.Target, error) {
	var out []domain.Target
	for _, t := range f.targets {
		if t.PeriodType != periodType || t.Year != year {
			continue
		}
		if scope != "" && t.Scope != scope && t.Scope != domain.ScopeTotal {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeCalendarRepo struct {
	holidays  map[int][]time.Time
	overrides map[time.Month]int
}

func (f *fakeCalendarRepo) FetchHolidays(ctx context.Context, year int) ([]time.Time, error) {
	return f.holidays[year], nil
}

func (f *fakeCalendarRepo) FetchBusinessDaysOverride(ctx context.Context, year int, month time.Month) (int, bool, error) {
	days, ok := f.overrides[month]
	return days, ok, nil
}

type fakeLiveSource struct {
	metrics *domain.TodayMetrics
	err     error
}

func (f *fakeLiveSource) TodayMetrics(ctx context.Context, date time.Time) (*domain.TodayMetrics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.metrics, nil
}

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func categorized(d int, category string, revenue int64) domain.DailyRecord {
	return domain.DailyRecord{
		RecordDate: day(d),
		Category:   &category,
		Revenue:    decimal.NewFromInt(revenue),
	}
}

// newFixture sets up June 2025: business days 2-6 and 9-11 precede the
// reference date Wednesday June 11, the month carries a 22-day override, and
// HVAC/Plumbing have accrued steady daily revenue through June 10.
func newFixture(live *fakeLiveSource) (*PacingService, error) {
	var records []domain.DailyRecord
	for _, d := range []int{2, 3, 4, 5, 6, 9, 10} {
		records = append(records, categorized(d, "HVAC", 20000))
		records = append(records, categorized(d, "Plumbing", 10000))
	}

	var targets []domain.Target
	for m := 1; m <= 12; m++ {
		targets = append(targets, domain.Target{
			Scope: domain.ScopeTotal, PeriodType: domain.PeriodTypeMonthly,
			Year: 2025, Month: m, Value: decimal.NewFromInt(855000),
		})
	}
	targets = append(targets,
		domain.Target{Scope: "HVAC", PeriodType: domain.PeriodTypeMonthly, Year: 2025, Month: 6, Value: decimal.NewFromInt(500000)},
		domain.Target{Scope: "Plumbing", PeriodType: domain.PeriodTypeMonthly, Year: 2025, Month: 6, Value: decimal.NewFromInt(300000)},
	)

	return NewPacingService(
		&fakeRecordRepo{records: records, categories: []string{"HVAC", "Plumbing"}},
		&fakeTargetRepo{targets: targets},
		&fakeCalendarRepo{overrides: map[time.Month]int{time.June: 22}},
		live,
		cache.NewNoopPeriodTotalsCache(),
		config.PacingConfig{
			BusinessWeek:     "mon-fri",
			GoodThreshold:    100,
			WarningThreshold: 90,
			HigherIsBetter:   true,
		},
	)
}

func liveToday() *fakeLiveSource {
	return &fakeLiveSource{metrics: &domain.TodayMetrics{
		Date:   day(11),
		Totals: domain.RevenueTotals{Revenue: decimal.NewFromInt(25000)},
		ByCategory: map[string]domain.RevenueTotals{
			"HVAC":     {Revenue: decimal.NewFromInt(15000)},
			"Plumbing": {Revenue: decimal.NewFromInt(10000)},
		},
	}}
}

func TestHuddleDashboardCompanyWide(t *testing.T) {
	svc, err := newFixture(liveToday())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	board, err := svc.HuddleDashboard(context.Background(), day(11), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !board.DataComplete {
		t.Fatal("expected data_complete with a healthy live source")
	}
	if board.Scope != domain.ScopeTotal {
		t.Fatalf("empty scope should normalize to TOTAL, got %s", board.Scope)
	}

	// Day: live figure against the derived daily target.
	if !board.Day.Actual.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("expected day actual 25000, got %s", board.Day.Actual)
	}
	if !board.Day.Target.Equal(decimal.NewFromFloat(38863.64)) {
		t.Fatalf("expected daily target 38863.64, got %s", board.Day.Target)
	}
	if board.Day.ExpectedPercent != 100 {
		t.Fatalf("a business day should expect 100%%, got %d", board.Day.ExpectedPercent)
	}

	// WTD: Mon-Tue history (60000) plus today's live 25000.
	if !board.WeekToDate.Actual.Equal(decimal.NewFromInt(85000)) {
		t.Fatalf("expected WTD actual 85000, got %s", board.WeekToDate.Actual)
	}
	if !board.WeekToDate.Target.Equal(decimal.NewFromFloat(194318.20)) {
		t.Fatalf("expected WTD target 194318.20, got %s", board.WeekToDate.Target)
	}
	if board.WeekToDate.BusinessDaysElapsed != 3 || board.WeekToDate.BusinessDaysTotal != 5 {
		t.Fatalf("expected week 3/5, got %d/%d", board.WeekToDate.BusinessDaysElapsed, board.WeekToDate.BusinessDaysTotal)
	}

	// MTD: seven history days (210000) plus today.
	if !board.MonthToDate.Actual.Equal(decimal.NewFromInt(235000)) {
		t.Fatalf("expected MTD actual 235000, got %s", board.MonthToDate.Actual)
	}
	if !board.MonthToDate.Target.Equal(decimal.NewFromInt(855000)) {
		t.Fatalf("expected MTD target 855000, got %s", board.MonthToDate.Target)
	}
	if board.MonthToDate.PercentToGoal != 27 {
		t.Fatalf("expected MTD percent 27, got %d", board.MonthToDate.PercentToGoal)
	}
	// Override says 22 business days; 8 have elapsed.
	if board.MonthToDate.BusinessDaysElapsed != 8 || board.MonthToDate.BusinessDaysTotal != 22 {
		t.Fatalf("expected month 8/22, got %d/%d", board.MonthToDate.BusinessDaysElapsed, board.MonthToDate.BusinessDaysTotal)
	}
	if board.MonthToDate.ExpectedPercent != 36 {
		t.Fatalf("expected MTD expected percent 36, got %d", board.MonthToDate.ExpectedPercent)
	}
	if board.MonthToDate.Status != domain.StatusBad {
		t.Fatalf("27%% against 100/90 thresholds should be bad, got %s", board.MonthToDate.Status)
	}

	// QTD: April and May are computed (22 each), June overridden to 22.
	if board.QuarterToDate.BusinessDaysTotal != 66 {
		t.Fatalf("expected 66 quarter business days, got %d", board.QuarterToDate.BusinessDaysTotal)
	}
	if board.QuarterToDate.BusinessDaysElapsed != 52 {
		t.Fatalf("expected 52 elapsed quarter business days, got %d", board.QuarterToDate.BusinessDaysElapsed)
	}
	if !board.QuarterToDate.Target.Equal(decimal.NewFromInt(2565000)) {
		t.Fatalf("expected quarter target 2565000, got %s", board.QuarterToDate.Target)
	}

	// YTD: uniform 855000 months make the annual target 10260000.
	if !board.YearToDate.Target.Equal(decimal.NewFromInt(10260000)) {
		t.Fatalf("expected annual target 10260000, got %s", board.YearToDate.Target)
	}
	if board.YearToDate.ExpectedPercent != 45 {
		t.Fatalf("expected YTD expected percent 45, got %d", board.YearToDate.ExpectedPercent)
	}
}

func TestHuddleDashboardCategoryBreakdown(t *testing.T) {
	svc, err := newFixture(liveToday())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	board, err := svc.HuddleDashboard(context.Background(), day(11), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(board.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(board.Categories))
	}

	byName := make(map[string]domain.CategoryPacing)
	for _, c := range board.Categories {
		byName[c.Category] = c
	}

	hvac := byName["HVAC"]
	if !hvac.Actual.Equal(decimal.NewFromInt(155000)) {
		t.Fatalf("expected HVAC MTD actual 155000, got %s", hvac.Actual)
	}
	if !hvac.Target.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("expected HVAC target 500000, got %s", hvac.Target)
	}
	if hvac.PercentToGoal != 31 {
		t.Fatalf("expected HVAC percent 31, got %d", hvac.PercentToGoal)
	}

	plumbing := byName["Plumbing"]
	if !plumbing.Actual.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected Plumbing MTD actual 80000, got %s", plumbing.Actual)
	}
	if !plumbing.Target.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("expected Plumbing target 300000, got %s", plumbing.Target)
	}
}

func TestHuddleDashboardScopedView(t *testing.T) {
	svc, err := newFixture(liveToday())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	board, err := svc.HuddleDashboard(context.Background(), day(11), "HVAC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scope-specific target beats the TOTAL fallback.
	if !board.MonthToDate.Target.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("expected HVAC MTD target 500000, got %s", board.MonthToDate.Target)
	}
	if !board.MonthToDate.Actual.Equal(decimal.NewFromInt(155000)) {
		t.Fatalf("expected HVAC MTD actual 155000, got %s", board.MonthToDate.Actual)
	}
	if len(board.Categories) != 0 {
		t.Fatal("scoped view should not carry a category breakdown")
	}
}

func TestHuddleDashboardLiveSourceFailsOpen(t *testing.T) {
	svc, err := newFixture(&fakeLiveSource{err: errors.New("trade api timeout")})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	board, err := svc.HuddleDashboard(context.Background(), day(11), "")
	if err != nil {
		t.Fatalf("live failure must not fail the board: %v", err)
	}

	if board.DataComplete {
		t.Fatal("expected data_complete=false when the live source errors")
	}
	if !board.Day.Actual.IsZero() {
		t.Fatalf("expected zero day actual without live data, got %s", board.Day.Actual)
	}
	// Historical sums still render.
	if !board.MonthToDate.Actual.Equal(decimal.NewFromInt(210000)) {
		t.Fatalf("expected MTD actual 210000 from history alone, got %s", board.MonthToDate.Actual)
	}
}

func TestComputePacingSelectsPeriod(t *testing.T) {
	svc, err := newFixture(liveToday())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	result, err := svc.ComputePacing(context.Background(), day(11), domain.PeriodWTD, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Period != domain.PeriodWTD {
		t.Fatalf("expected wtd result, got %s", result.Period)
	}

	if _, err := svc.ComputePacing(context.Background(), day(11), "fortnight", ""); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestHuddleDashboardMissingTargetsDegrade(t *testing.T) {
	svc, err := NewPacingService(
		&fakeRecordRepo{},
		&fakeTargetRepo{},
		&fakeCalendarRepo{},
		&fakeLiveSource{err: errors.New("down")},
		cache.NewNoopPeriodTotalsCache(),
		config.PacingConfig{BusinessWeek: "mon-fri", GoodThreshold: 100, WarningThreshold: 90, HigherIsBetter: true},
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	board, err := svc.HuddleDashboard(context.Background(), day(11), "")
	if err != nil {
		t.Fatalf("missing configuration must not fail the board: %v", err)
	}

	if !board.MonthToDate.Target.IsZero() {
		t.Fatalf("expected zero target without configuration, got %s", board.MonthToDate.Target)
	}
	if board.MonthToDate.PercentToGoal != 0 {
		t.Fatalf("zero target should yield zero percent, got %d", board.MonthToDate.PercentToGoal)
	}
	if board.MonthToDate.Status != domain.StatusBad {
		t.Fatalf("degraded board should show bad status, got %s", board.MonthToDate.Status)
	}
}

func yearBoundaryService(t *testing.T, holidays map[int][]time.Time) *PacingService {
	t.Helper()
	svc, err := NewPacingService(
		&fakeRecordRepo{},
		&fakeTargetRepo{},
		&fakeCalendarRepo{holidays: holidays},
		&fakeLiveSource{metrics: &domain.TodayMetrics{}},
		cache.NewNoopPeriodTotalsCache(),
		config.PacingConfig{BusinessWeek: "mon-fri", GoodThreshold: 100, WarningThreshold: 90, HigherIsBetter: true},
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

// The week of Mon 2025-12-29 runs into January. A late-December reference
// date must still see next year's New Year's Day when counting the week.
func TestWeekSpanningIntoNextYearSeesItsHolidays(t *testing.T) {
	svc := yearBoundaryService(t, map[int][]time.Time{
		2026: {time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	})

	wednesday := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	board, err := svc.HuddleDashboard(context.Background(), wednesday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if board.WeekToDate.BusinessDaysTotal != 4 {
		t.Fatalf("New Year's Day should shrink the week to 4 days, got %d", board.WeekToDate.BusinessDaysTotal)
	}
	if board.WeekToDate.BusinessDaysElapsed != 3 {
		t.Fatalf("expected 3 elapsed days through Wednesday, got %d", board.WeekToDate.BusinessDaysElapsed)
	}
}

// The mirror case: an early-January reference whose week started in the
// prior December must see that December's holidays too.
func TestWeekStartingInPriorYearSeesItsHolidays(t *testing.T) {
	svc := yearBoundaryService(t, map[int][]time.Time{
		2025: {time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)},
		2026: {time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	})

	friday := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	board, err := svc.HuddleDashboard(context.Background(), friday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Week of Mon 2025-12-29: Wed Dec 31 and Thu Jan 1 are holidays.
	if board.WeekToDate.BusinessDaysTotal != 3 {
		t.Fatalf("two holidays should shrink the week to 3 days, got %d", board.WeekToDate.BusinessDaysTotal)
	}
	if board.WeekToDate.BusinessDaysElapsed != 3 {
		t.Fatalf("expected 3 elapsed days through Friday, got %d", board.WeekToDate.BusinessDaysElapsed)
	}
}
