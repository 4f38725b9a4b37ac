// Package syncer keeps today's snapshot rows fresh. It periodically pulls
// the live figure from the trade API and overwrites today's (date, category)
// rows, so dashboards reading historical storage see at most one row per key
// no matter how many refreshes have run.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tradepulse/huddle-backend/internal/cache"
	"github.com/tradepulse/huddle-backend/internal/domain"
	"github.com/tradepulse/huddle-backend/internal/repository"
	"github.com/tradepulse/huddle-backend/internal/trademetrics"
)

type Syncer struct {
	records  repository.DailyRecordRepository
	live     trademetrics.Source
	cache    cache.PeriodTotalsCache
	interval time.Duration
}

func New(records repository.DailyRecordRepository, live trademetrics.Source, cacheImpl cache.PeriodTotalsCache, interval time.Duration) *Syncer {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPeriodTotalsCache()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Syncer{
		records:  records,
		live:     live,
		cache:    cacheImpl,
		interval: interval,
	}
}

// Run refreshes immediately, then on every tick until the context ends.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.RefreshOnce(ctx); err != nil {
		log.Error().Err(err).Msg("sync: initial refresh failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshOnce(ctx); err != nil {
				log.Error().Err(err).Msg("sync: refresh failed")
			}
		}
	}
}

// RefreshOnce pulls the live figure for today and overwrites today's rows in
// one batch. Cached range sums that may cover today are dropped.
func (s *Syncer) RefreshOnce(ctx context.Context) error {
	today := time.Now()
	metrics, err := s.live.TodayMetrics(ctx, today)
	if err != nil {
		return fmt.Errorf("fetch today metrics: %w", err)
	}

	if err := s.records.UpsertBatch(ctx, snapshotRows(today, metrics)); err != nil {
		return err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("sync: cache invalidation failed")
	}

	log.Info().
		Str("date", today.Format("2006-01-02")).
		Int("categories", len(metrics.ByCategory)).
		Msg("sync: today snapshot refreshed")

	return nil
}

// snapshotRows flattens the live figure into storage rows: one per trade plus
// a nil-category row holding only the unattributed remainder. Summing the
// day's rows must reproduce the live total exactly once; storing the full
// total alongside the per-trade rows would count the categorized portion
// twice as soon as the day is read back from storage.
func snapshotRows(date time.Time, metrics *domain.TodayMetrics) []domain.DailyRecord {
	rows := make([]domain.DailyRecord, 0, len(metrics.ByCategory)+1)

	categorized := domain.RevenueTotals{}
	for category, totals := range metrics.ByCategory {
		category := category
		rows = append(rows, recordFromTotals(date, &category, totals))
		categorized = categorized.Add(totals)
	}

	// The remainder row is written even when zero so a stale nonzero row
	// from an earlier refresh gets overwritten.
	rows = append(rows, recordFromTotals(date, nil, metrics.Totals.Sub(categorized)))

	return rows
}

func recordFromTotals(date time.Time, category *string, totals domain.RevenueTotals) domain.DailyRecord {
	return domain.DailyRecord{
		RecordDate:        date,
		Category:          category,
		Revenue:           totals.Revenue,
		CompletedRevenue:  totals.CompletedRevenue,
		NonJobRevenue:     totals.NonJobRevenue,
		AdjustmentRevenue: totals.AdjustmentRevenue,
		Sales:             totals.Sales,
	}
}
