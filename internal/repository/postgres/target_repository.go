package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tradepulse/huddle-backend/internal/domain"
	"github.com/tradepulse/huddle-backend/internal/repository"
)

type targetRepository struct {
	db *sqlx.DB
}

func NewTargetRepository(db *sqlx.DB) repository.TargetRepository {
	return &targetRepository{db: db}
}

// FetchTargets returns targets for the scope and period type within a year,
// most recent first. An empty scope returns every scope so the service can
// resolve the most specific entry with ScopeTotal as the fallback.
func (r *targetRepository) FetchTargets(ctx context.Context, scope, periodType string, year int) ([]domain.Target, error) {
	query := `
		SELECT id, scope, period_type, target_year, target_month, target_value
		FROM targets
		WHERE period_type = $1 AND target_year = $2
	`

	args := []interface{}{periodType, year}
	if scope != "" {
		query += " AND scope IN ($3, $4)"
		args = append(args, scope, domain.ScopeTotal)
	}
	query += " ORDER BY target_year DESC, target_month DESC, scope"

	var targets []domain.Target
	if err := r.db.SelectContext(ctx, &targets, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching targets: %w", err)
	}

	return targets, nil
}
