package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tradepulse/huddle-backend/internal/aggregate"
	"github.com/tradepulse/huddle-backend/internal/cache"
	"github.com/tradepulse/huddle-backend/internal/calendar"
	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/domain"
	"github.com/tradepulse/huddle-backend/internal/pacing"
	"github.com/tradepulse/huddle-backend/internal/repository"
	"github.com/tradepulse/huddle-backend/internal/trademetrics"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownPeriod marks a period identifier outside day/wtd/mtd/qtd/ytd.
var ErrUnknownPeriod = errors.New("unknown pacing period")

// PacingService assembles the huddle board. It fans out the independent
// reads (targets, holidays, overrides, historical sums, live today figure),
// then runs the pure calendar/aggregate/pacing functions over the results.
// Historical sums go through the cache; today's figure never does.
type PacingService struct {
	records  repository.DailyRecordRepository
	targets  repository.TargetRepository
	calendar repository.CalendarRepository
	live     trademetrics.Source
	cache    cache.PeriodTotalsCache

	convention     calendar.Convention
	thresholds     pacing.Thresholds
	higherIsBetter bool
	defaults       pacing.Defaults
}

func NewPacingService(
	records repository.DailyRecordRepository,
	targets repository.TargetRepository,
	calendarRepo repository.CalendarRepository,
	live trademetrics.Source,
	cacheImpl cache.PeriodTotalsCache,
	cfg config.PacingConfig,
) (*PacingService, error) {
	convention, err := calendar.ParseConvention(cfg.BusinessWeek)
	if err != nil {
		return nil, err
	}

	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPeriodTotalsCache()
	}

	return &PacingService{
		records:    records,
		targets:    targets,
		calendar:   calendarRepo,
		live:       live,
		cache:      cacheImpl,
		convention: convention,
		thresholds: pacing.Thresholds{
			Good:    cfg.GoodThreshold,
			Warning: cfg.WarningThreshold,
		},
		higherIsBetter: cfg.HigherIsBetter,
		defaults: pacing.Defaults{
			MonthlyTarget:       decimal.NewFromFloat(cfg.DefaultMonthlyTarget),
			BusinessDaysInMonth: cfg.DefaultBusinessDays,
		},
	}, nil
}

// pacingInputs holds everything the pure calculator needs, gathered up front
// so no I/O happens during the computation itself.
type pacingInputs struct {
	holidays   calendar.HolidaySet
	overrides  map[time.Month]int
	monthly    map[time.Month]decimal.Decimal
	rawTargets []domain.Target
	categories []string

	wtd, mtd, qtd, ytd aggregate.Summary

	today        *domain.TodayMetrics
	dataComplete bool
}

// HuddleDashboard computes the full board for a reference date. Scope is a
// trade/department identifier or empty/TOTAL for the company-wide view; only
// the company-wide view carries the per-trade breakdown.
func (s *PacingService) HuddleDashboard(ctx context.Context, date time.Time, scope string) (*domain.HuddleDashboard, error) {
	date = calendar.DateOnly(date)
	if scope == "" {
		scope = domain.ScopeTotal
	}

	inputs, err := s.gatherInputs(ctx, date, scope)
	if err != nil {
		return nil, err
	}

	return s.buildDashboard(date, scope, inputs), nil
}

// ComputePacing returns the pacing result for one period of the board.
func (s *PacingService) ComputePacing(ctx context.Context, date time.Time, period, scope string) (*domain.PacingResult, error) {
	board, err := s.HuddleDashboard(ctx, date, scope)
	if err != nil {
		return nil, err
	}

	switch period {
	case domain.PeriodDay:
		return &board.Day, nil
	case domain.PeriodWTD:
		return &board.WeekToDate, nil
	case domain.PeriodMTD:
		return &board.MonthToDate, nil
	case domain.PeriodQTD:
		return &board.QuarterToDate, nil
	case domain.PeriodYTD:
		return &board.YearToDate, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownPeriod, period)
}

// Categories lists the trades present in the snapshot data.
func (s *PacingService) Categories(ctx context.Context) ([]string, error) {
	return s.records.Categories(ctx)
}

// Targets returns the configured monthly targets for a scope and year.
func (s *PacingService) Targets(ctx context.Context, scope string, year int) ([]domain.Target, error) {
	return s.targets.FetchTargets(ctx, scope, domain.PeriodTypeMonthly, year)
}

func (s *PacingService) gatherInputs(ctx context.Context, date time.Time, scope string) (*pacingInputs, error) {
	inputs := &pacingInputs{
		overrides: make(map[time.Month]int),
	}

	var categoryFilter *string
	if scope != domain.ScopeTotal {
		categoryFilter = &scope
	}

	yesterday := date.AddDate(0, 0, -1)
	quarterStart := calendar.QuarterStart(date)
	weekStart := calendar.WeekStart(date)

	g, gctx := errgroup.WithContext(ctx)

	// The week window can cross a year boundary in either direction, so
	// holidays come from every year it touches, not just the reference year.
	holidayYears := []int{date.Year()}
	if y := weekStart.Year(); y != date.Year() {
		holidayYears = append(holidayYears, y)
	}
	if y := weekStart.AddDate(0, 0, 6).Year(); y != date.Year() {
		holidayYears = append(holidayYears, y)
	}
	holidayDates := make([][]time.Time, len(holidayYears))
	for i, year := range holidayYears {
		i, year := i, year
		g.Go(func() error {
			dates, err := s.calendar.FetchHolidays(gctx, year)
			if err != nil {
				return fmt.Errorf("fetch holidays: %w", err)
			}
			holidayDates[i] = dates
			return nil
		})
	}

	// Business-day overrides for the months of the current quarter.
	overrideResults := make([]int, 3)
	overrideFound := make([]bool, 3)
	for i := 0; i < 3; i++ {
		i := i
		month := quarterStart.AddDate(0, i, 0).Month()
		g.Go(func() error {
			days, ok, err := s.calendar.FetchBusinessDaysOverride(gctx, date.Year(), month)
			if err != nil {
				return fmt.Errorf("fetch business days override: %w", err)
			}
			overrideResults[i] = days
			overrideFound[i] = ok
			return nil
		})
	}

	g.Go(func() error {
		// The company-wide view needs every scope's targets for the
		// per-trade breakdown; a scoped view only needs its own plus the
		// TOTAL fallback.
		fetchScope := scope
		if scope == domain.ScopeTotal {
			fetchScope = ""
		}
		targets, err := s.targets.FetchTargets(gctx, fetchScope, domain.PeriodTypeMonthly, date.Year())
		if err != nil {
			return fmt.Errorf("fetch targets: %w", err)
		}
		inputs.rawTargets = targets
		inputs.monthly = resolveMonthlyTargets(targets, scope)
		return nil
	})

	g.Go(func() error {
		categories, err := s.records.Categories(gctx)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		inputs.categories = categories
		return nil
	})

	// Historical sums for each rollup window, through yesterday. Today's
	// partial figure comes from the live source below and is added on top.
	periodStarts := []struct {
		start time.Time
		dest  *aggregate.Summary
	}{
		{weekStart, &inputs.wtd},
		{calendar.MonthStart(date), &inputs.mtd},
		{quarterStart, &inputs.qtd},
		{calendar.YearStart(date), &inputs.ytd},
	}
	for _, p := range periodStarts {
		p := p
		g.Go(func() error {
			summary, err := s.historicalSummary(gctx, p.start, yesterday, categoryFilter)
			if err != nil {
				return err
			}
			*p.dest = summary
			return nil
		})
	}

	// The live figure is fail-open: if the trade API is down the board still
	// renders from historical data, flagged as incomplete.
	g.Go(func() error {
		today, err := s.live.TodayMetrics(gctx, date)
		if err != nil {
			log.Warn().Err(err).Str("date", date.Format("2006-01-02")).
				Msg("pacing: live today figure unavailable, proceeding with zero")
			return nil
		}
		inputs.today = today
		inputs.dataComplete = true
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []time.Time
	for _, dates := range holidayDates {
		merged = append(merged, dates...)
	}
	inputs.holidays = calendar.NewHolidaySet(merged)

	for i := 0; i < 3; i++ {
		if overrideFound[i] {
			inputs.overrides[quarterStart.AddDate(0, i, 0).Month()] = overrideResults[i]
		}
	}

	return inputs, nil
}

// historicalSummary is cache-aside: period sums for closed days are stable,
// so hits avoid both the query and the aggregation.
func (s *PacingService) historicalSummary(ctx context.Context, start, end time.Time, category *string) (aggregate.Summary, error) {
	if calendar.DateOnly(end).Before(calendar.DateOnly(start)) {
		return aggregate.Summary{ByCategory: map[string]domain.RevenueTotals{}}, nil
	}

	if cached, ok, err := s.cache.GetTotals(ctx, start, end, category); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("pacing: cache get totals failed")
	}

	records, err := s.records.FetchRange(ctx, start, end, category)
	if err != nil {
		return aggregate.Summary{}, fmt.Errorf("fetch daily records: %w", err)
	}

	summary, err := aggregate.Aggregate(records, start, end, category)
	if err != nil {
		return aggregate.Summary{}, err
	}

	if err := s.cache.SetTotals(ctx, start, end, category, &summary); err != nil {
		log.Warn().Err(err).Msg("pacing: cache set totals failed")
	}

	return summary, nil
}

func (s *PacingService) buildDashboard(date time.Time, scope string, inputs *pacingInputs) *domain.HuddleDashboard {
	h := inputs.holidays
	month := date.Month()

	elapsedWeek := s.convention.BusinessDaysElapsedInWeek(date, h)
	totalWeek := s.convention.BusinessDaysInWeek(date, h)
	elapsedMonth := s.convention.BusinessDaysElapsedInMonth(date, h)
	totalMonth := s.businessDaysInMonth(date.Year(), month, h, inputs.overrides)
	elapsedQuarter := s.convention.BusinessDaysElapsedInQuarter(date, h)

	quarterStart := calendar.QuarterStart(date)
	totalQuarter := 0
	quarterTarget := decimal.Zero
	for i := 0; i < 3; i++ {
		m := quarterStart.AddDate(0, i, 0).Month()
		totalQuarter += s.businessDaysInMonth(date.Year(), m, h, inputs.overrides)
		quarterTarget = quarterTarget.Add(s.monthTarget(inputs.monthly, m))
	}

	monthlyTarget := s.monthTarget(inputs.monthly, month)
	dailyTarget := pacing.DailyTarget(monthlyTarget, totalMonth)
	weeklyTarget := pacing.WeeklyTarget(dailyTarget, totalWeek)

	annualTarget := decimal.Zero
	priorMonthsTarget := decimal.Zero
	for m := time.January; m <= time.December; m++ {
		value := s.monthTarget(inputs.monthly, m)
		annualTarget = annualTarget.Add(value)
		if m < month {
			priorMonthsTarget = priorMonthsTarget.Add(value)
		}
	}

	todayTotals := domain.RevenueTotals{}
	todayByCategory := map[string]domain.RevenueTotals{}
	if inputs.today != nil {
		todayTotals = inputs.today.Totals
		todayByCategory = inputs.today.ByCategory
		if scope != domain.ScopeTotal {
			todayTotals = todayByCategory[scope]
		}
	}

	elapsedToday := 0
	if s.convention.IsBusinessDay(date, h) {
		elapsedToday = 1
	}

	monthProgress := 0.0
	if totalMonth > 0 {
		monthProgress = float64(elapsedMonth) / float64(totalMonth)
	}
	expectedYTD := pacing.ExpectedAnnualPercent(priorMonthsTarget, monthlyTarget, monthProgress, annualTarget)

	board := &domain.HuddleDashboard{
		Date:         date.Format("2006-01-02"),
		Scope:        scope,
		DataComplete: inputs.dataComplete,
		Day: s.result(domain.PeriodDay, scope,
			todayTotals.Revenue, dailyTarget,
			pacing.ExpectedPercent(elapsedToday, 1), elapsedToday, 1),
		WeekToDate: s.result(domain.PeriodWTD, scope,
			inputs.wtd.Revenue.Add(todayTotals.Revenue), weeklyTarget,
			pacing.ExpectedPercent(elapsedWeek, totalWeek), elapsedWeek, totalWeek),
		MonthToDate: s.result(domain.PeriodMTD, scope,
			inputs.mtd.Revenue.Add(todayTotals.Revenue), monthlyTarget,
			pacing.ExpectedPercent(elapsedMonth, totalMonth), elapsedMonth, totalMonth),
		QuarterToDate: s.result(domain.PeriodQTD, scope,
			inputs.qtd.Revenue.Add(todayTotals.Revenue), quarterTarget,
			pacing.ExpectedPercent(elapsedQuarter, totalQuarter), elapsedQuarter, totalQuarter),
		YearToDate: s.result(domain.PeriodYTD, scope,
			inputs.ytd.Revenue.Add(todayTotals.Revenue), annualTarget,
			expectedYTD, elapsedMonth, totalMonth),
	}

	if scope == domain.ScopeTotal {
		board.Categories = s.categoryBreakdown(inputs, todayByCategory, month,
			pacing.ExpectedPercent(elapsedMonth, totalMonth))
	}

	return board
}

func (s *PacingService) result(period, scope string, actual, target decimal.Decimal, expected, elapsed, total int) domain.PacingResult {
	percent := pacing.PercentToGoal(actual, target)
	return domain.PacingResult{
		Period:              period,
		Scope:               scope,
		Actual:              actual,
		Target:              target,
		PercentToGoal:       percent,
		ExpectedPercent:     expected,
		Status:              pacing.Status(percent, s.thresholds, s.higherIsBetter),
		BusinessDaysElapsed: elapsed,
		BusinessDaysTotal:   total,
	}
}

// categoryBreakdown produces the per-trade month-to-date rows. Targets for a
// trade come from that trade's own scope; trades without a configured target
// degrade to the default, which typically means a zero target and a "bad"
// status rather than a missing row.
func (s *PacingService) categoryBreakdown(inputs *pacingInputs, todayByCategory map[string]domain.RevenueTotals, month time.Month, expected int) []domain.CategoryPacing {
	seen := make(map[string]struct{}, len(inputs.categories))
	names := make([]string, 0, len(inputs.categories))
	for _, c := range inputs.categories {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			names = append(names, c)
		}
	}
	for c := range todayByCategory {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			names = append(names, c)
		}
	}

	breakdown := make([]domain.CategoryPacing, 0, len(names))
	for _, name := range names {
		actual := inputs.mtd.ByCategory[name].Revenue.Add(todayByCategory[name].Revenue)
		target := s.defaults.MonthlyTarget
		if scoped, ok := scopeMonthTarget(inputs.rawTargets, name, month); ok {
			target = scoped
		}
		percent := pacing.PercentToGoal(actual, target)
		breakdown = append(breakdown, domain.CategoryPacing{
			Category:        name,
			Actual:          actual,
			Target:          target,
			PercentToGoal:   percent,
			ExpectedPercent: expected,
			Status:          pacing.Status(percent, s.thresholds, s.higherIsBetter),
		})
	}

	return breakdown
}

func (s *PacingService) businessDaysInMonth(year int, month time.Month, holidays calendar.HolidaySet, overrides map[time.Month]int) int {
	if days, ok := overrides[month]; ok {
		if days < 0 {
			return 0
		}
		return days
	}

	computed := s.convention.BusinessDaysInMonth(year, month, holidays)
	if computed == 0 {
		return s.defaults.BusinessDaysInMonth
	}
	return computed
}

func (s *PacingService) monthTarget(monthly map[time.Month]decimal.Decimal, month time.Month) decimal.Decimal {
	if value, ok := monthly[month]; ok {
		return value
	}
	return s.defaults.MonthlyTarget
}

// scopeMonthTarget finds a trade's own monthly target. There is no TOTAL
// fallback here: a company-wide target says nothing about an individual
// trade's goal.
func scopeMonthTarget(targets []domain.Target, scope string, month time.Month) (decimal.Decimal, bool) {
	for _, t := range targets {
		if t.Scope == scope && time.Month(t.Month) == month {
			return t.Value, true
		}
	}
	return decimal.Zero, false
}

// resolveMonthlyTargets picks one target value per month, preferring the
// requested scope over the TOTAL fallback. Rows arrive most-recent-first so
// the first match per (scope, month) wins.
func resolveMonthlyTargets(targets []domain.Target, scope string) map[time.Month]decimal.Decimal {
	scoped := make(map[time.Month]decimal.Decimal)
	fallback := make(map[time.Month]decimal.Decimal)

	for _, t := range targets {
		month := time.Month(t.Month)
		switch t.Scope {
		case scope:
			if _, ok := scoped[month]; !ok {
				scoped[month] = t.Value
			}
		case domain.ScopeTotal:
			if _, ok := fallback[month]; !ok {
				fallback[month] = t.Value
			}
		}
	}

	resolved := make(map[time.Month]decimal.Decimal, 12)
	for m := time.January; m <= time.December; m++ {
		if value, ok := scoped[m]; ok {
			resolved[m] = value
			continue
		}
		if value, ok := fallback[m]; ok {
			resolved[m] = value
		}
	}

	return resolved
}
