// Package calendar computes business-day counts for week, month and quarter
// windows. All functions are pure; holiday lookups come from a caller-supplied
// set and the work-week convention is a parameter, since deployments disagree
// on whether Saturday counts as a business day.
package calendar

import (
	"fmt"
	"time"
)

// Convention selects which weekdays count as business days.
type Convention int

const (
	// MonFri counts Monday through Friday.
	MonFri Convention = iota
	// MonSat counts Monday through Saturday.
	MonSat
)

// ParseConvention maps a config value to a Convention.
func ParseConvention(value string) (Convention, error) {
	switch value {
	case "mon-fri", "":
		return MonFri, nil
	case "mon-sat":
		return MonSat, nil
	}

	return MonFri, fmt.Errorf("unknown business week convention %q", value)
}

// HolidaySet holds holidays keyed by ISO date string. Comparison is an
// exact-date match, not day-of-year. A nil set means no holidays.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from a list of holiday dates.
func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d.Format("2006-01-02")] = struct{}{}
	}
	return set
}

// Contains reports whether the given date is a holiday.
func (s HolidaySet) Contains(d time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[d.Format("2006-01-02")]
	return ok
}

// IsBusinessDay reports whether d is a working weekday under the convention
// and not a holiday.
func (c Convention) IsBusinessDay(d time.Time, holidays HolidaySet) bool {
	switch d.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		if c != MonSat {
			return false
		}
	}

	return !holidays.Contains(d)
}

// WeekStart returns the Monday of the week containing d. The work week is
// locale-fixed to start on Monday.
func WeekStart(d time.Time) time.Time {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return DateOnly(d).AddDate(0, 0, -offset)
}

// MonthStart returns the first day of the month containing d.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

// QuarterStart returns the first day of the calendar quarter containing d.
func QuarterStart(d time.Time) time.Time {
	quarterMonth := time.Month((int(d.Month())-1)/3*3 + 1)
	return time.Date(d.Year(), quarterMonth, 1, 0, 0, 0, 0, d.Location())
}

// YearStart returns January 1 of the year containing d.
func YearStart(d time.Time) time.Time {
	return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
}

// DateOnly truncates d to midnight in its own location.
func DateOnly(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// BusinessDaysBetween counts business days in [start, end] inclusive. An
// inverted range counts zero days.
func (c Convention) BusinessDaysBetween(start, end time.Time, holidays HolidaySet) int {
	start = DateOnly(start)
	end = DateOnly(end)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d, holidays) {
			count++
		}
	}
	return count
}

// BusinessDaysElapsedInWeek counts business days from Monday through d
// inclusive. When d itself is a weekend or holiday it contributes nothing;
// only business days up to the most recent one are counted.
func (c Convention) BusinessDaysElapsedInWeek(d time.Time, holidays HolidaySet) int {
	return c.BusinessDaysBetween(WeekStart(d), d, holidays)
}

// BusinessDaysInWeek counts every business day in the week containing d.
func (c Convention) BusinessDaysInWeek(d time.Time, holidays HolidaySet) int {
	start := WeekStart(d)
	return c.BusinessDaysBetween(start, start.AddDate(0, 0, 6), holidays)
}

// BusinessDaysElapsedInMonth counts business days from the 1st through d
// inclusive.
func (c Convention) BusinessDaysElapsedInMonth(d time.Time, holidays HolidaySet) int {
	return c.BusinessDaysBetween(MonthStart(d), d, holidays)
}

// BusinessDaysInMonth counts every business day in the given month. A
// configured per-month override, when one exists, takes precedence over this
// computed value; applying the override is the caller's concern.
func (c Convention) BusinessDaysInMonth(year int, month time.Month, holidays HolidaySet) int {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return c.BusinessDaysBetween(start, start.AddDate(0, 1, -1), holidays)
}

// BusinessDaysElapsedInQuarter counts business days from the quarter start
// through d inclusive.
func (c Convention) BusinessDaysElapsedInQuarter(d time.Time, holidays HolidaySet) int {
	return c.BusinessDaysBetween(QuarterStart(d), d, holidays)
}

// BusinessDaysInQuarter counts every business day in the quarter containing d.
func (c Convention) BusinessDaysInQuarter(d time.Time, holidays HolidaySet) int {
	start := QuarterStart(d)
	return c.BusinessDaysBetween(start, start.AddDate(0, 3, -1), holidays)
}
