package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tradepulse/huddle-backend/internal/repository"
)

type calendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) repository.CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) FetchHolidays(ctx context.Context, year int) ([]time.Time, error) {
	query := `
		SELECT holiday_date
		FROM holidays
		WHERE EXTRACT(YEAR FROM holiday_date) = $1
		ORDER BY holiday_date
	`

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, year); err != nil {
		return nil, fmt.Errorf("error fetching holidays: %w", err)
	}

	return dates, nil
}

// FetchBusinessDaysOverride returns the configured business-day count for a
// month. The second return is false when no override exists, in which case
// the caller falls back to the computed calendar count.
func (r *calendarRepository) FetchBusinessDaysOverride(ctx context.Context, year int, month time.Month) (int, bool, error) {
	query := `
		SELECT business_days
		FROM business_days_overrides
		WHERE override_year = $1 AND override_month = $2
	`

	var days int
	err := r.db.GetContext(ctx, &days, query, year, int(month))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error fetching business days override: %w", err)
	}

	return days, true, nil
}
