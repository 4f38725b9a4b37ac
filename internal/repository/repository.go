// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/tradepulse/huddle-backend/internal/domain"
)

// DailyRecordRepository reads and writes daily revenue snapshot rows. Rows
// are keyed by (record_date, category); UpsertBatch must never leave more
// than one row per key, since aggregation sums rely on that uniqueness, and
// the batch is applied atomically so readers never see a half-written day.
type DailyRecordRepository interface {
	FetchRange(ctx context.Context, start, end time.Time, category *string) ([]domain.DailyRecord, error)
	UpsertBatch(ctx context.Context, records []domain.DailyRecord) error
	Categories(ctx context.Context) ([]string, error)
}

// TargetRepository reads configured targets. Results come back
// most-recent-first so the first match for a scope wins.
type TargetRepository interface {
	FetchTargets(ctx context.Context, scope, periodType string, year int) ([]domain.Target, error)
}

// CalendarRepository reads the configured holiday list and the per-month
// business-day overrides.
type CalendarRepository interface {
	FetchHolidays(ctx context.Context, year int) ([]time.Time, error)
	FetchBusinessDaysOverride(ctx context.Context, year int, month time.Month) (int, bool, error)
}
