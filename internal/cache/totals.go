package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradepulse/huddle-backend/internal/aggregate"
	"github.com/tradepulse/huddle-backend/internal/config"
)

const (
	periodTotalsKeyPrefix = "pacing:totals"
	scanBatchSize         = 100
	defaultTotalsTTL      = 5 * time.Minute
)

// PeriodTotalsCache stores precomputed historical period sums keyed by date
// range and category. Callers must never put today's partial figure here;
// "today" is always sourced live so intraday progress is not understated.
type PeriodTotalsCache interface {
	GetTotals(ctx context.Context, start, end time.Time, category *string) (*aggregate.Summary, bool, error)
	SetTotals(ctx context.Context, start, end time.Time, category *string, summary *aggregate.Summary) error
	InvalidateAll(ctx context.Context) error
}

type redisTotalsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopTotalsCache struct{}

func NewPeriodTotalsCache(cfg config.CacheConfig) (PeriodTotalsCache, error) {
	if !cfg.Enabled {
		return &noopTotalsCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.TotalsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTotalsTTL
	}

	return &redisTotalsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPeriodTotalsCache() PeriodTotalsCache {
	return &noopTotalsCache{}
}

func (c *redisTotalsCache) GetTotals(ctx context.Context, start, end time.Time, category *string) (*aggregate.Summary, bool, error) {
	key := buildPeriodTotalsKey(start, end, category)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary aggregate.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode period totals cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisTotalsCache) SetTotals(ctx context.Context, start, end time.Time, category *string, summary *aggregate.Summary) error {
	key := buildPeriodTotalsKey(start, end, category)
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode period totals cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisTotalsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, periodTotalsKeyPrefix, scanBatchSize)
}

func (n *noopTotalsCache) GetTotals(ctx context.Context, start, end time.Time, category *string) (*aggregate.Summary, bool, error) {
	return nil, false, nil
}

func (n *noopTotalsCache) SetTotals(ctx context.Context, start, end time.Time, category *string, summary *aggregate.Summary) error {
	return nil
}

func (n *noopTotalsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildPeriodTotalsKey(start, end time.Time, category *string) string {
	cat := ""
	if category != nil {
		cat = *category
	}

	raw := fmt.Sprintf("%s|%s|%s", start.Format("2006-01-02"), end.Format("2006-01-02"), cat)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", periodTotalsKeyPrefix, hex.EncodeToString(hash[:]))
}
