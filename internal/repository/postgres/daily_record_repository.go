package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradepulse/huddle-backend/internal/domain"
	"github.com/tradepulse/huddle-backend/internal/repository"
)

type dailyRecordRepository struct {
	db *DB
}

func NewDailyRecordRepository(db *DB) repository.DailyRecordRepository {
	return &dailyRecordRepository{db: db}
}

func (r *dailyRecordRepository) FetchRange(ctx context.Context, start, end time.Time, category *string) ([]domain.DailyRecord, error) {
	query := `
		SELECT id, record_date, category, revenue, completed_revenue,
		       non_job_revenue, adjustment_revenue, sales, updated_at
		FROM daily_records
		WHERE record_date >= $1 AND record_date <= $2
	`

	args := []interface{}{start, end}
	if category != nil {
		query += " AND category = $3"
		args = append(args, *category)
	}
	query += " ORDER BY record_date, category"

	var records []domain.DailyRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching daily records: %w", err)
	}

	return records, nil
}

// The conflict target is the COALESCE unique index, since a NULL category
// would otherwise dodge a plain unique constraint.
const upsertDailyRecordQuery = `
	INSERT INTO daily_records
		(record_date, category, revenue, completed_revenue,
		 non_job_revenue, adjustment_revenue, sales, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (record_date, COALESCE(category, '')) DO UPDATE SET
		revenue            = EXCLUDED.revenue,
		completed_revenue  = EXCLUDED.completed_revenue,
		non_job_revenue    = EXCLUDED.non_job_revenue,
		adjustment_revenue = EXCLUDED.adjustment_revenue,
		sales              = EXCLUDED.sales,
		updated_at         = NOW()
`

// UpsertBatch writes snapshot rows in one transaction, replacing any existing
// row for the same (record_date, category) key. Intraday refreshes for today
// hit this path repeatedly and must never produce duplicate rows or expose a
// partially written day.
func (r *dailyRecordRepository) UpsertBatch(ctx context.Context, records []domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, record := range records {
			_, err := tx.ExecContext(ctx, upsertDailyRecordQuery,
				record.RecordDate, record.Category, record.Revenue, record.CompletedRevenue,
				record.NonJobRevenue, record.AdjustmentRevenue, record.Sales)
			if err != nil {
				return fmt.Errorf("error upserting daily record: %w", err)
			}
		}
		return nil
	})
}

func (r *dailyRecordRepository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM daily_records
		WHERE category IS NOT NULL
		ORDER BY category
	`

	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("error fetching categories: %w", err)
	}

	return categories, nil
}
