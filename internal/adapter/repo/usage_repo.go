package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// UsageRepositoryPG implements domain.UsageRepository backed by PostgreSQL.
// The increment is a single upsert so concurrent generations for the same
// merchant serialize inside the database rather than in application code.
type UsageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new UsageRepositoryPG.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepositoryPG {
	return &UsageRepositoryPG{pool: pool}
}

// Get fetches one usage period row.
func (r *UsageRepositoryPG) Get(ctx context.Context, merchantID, periodKey string) (*domain.UsagePeriod, error) {
	query := `
SELECT merchant_id, period_key, included_quota, consumed_count, overage_count, overage_charge, total_charge, updated_at
FROM usage_periods
WHERE merchant_id = $1 AND period_key = $2;
`
	row := r.pool.QueryRow(ctx, query, merchantID, periodKey)
	return scanUsagePeriod(row)
}

// Increment adds one consumed unit to the (merchantID, periodKey) row,
// creating it when absent, and re-derives the overage columns from the new
// counter in the same statement.
func (r *UsageRepositoryPG) Increment(ctx context.Context, merchantID, periodKey string, includedQuota int, overageRate, monthlyFee float64) (*domain.UsagePeriod, error) {
	query := `
INSERT INTO usage_periods (merchant_id, period_key, included_quota, consumed_count, overage_count, overage_charge, total_charge)
VALUES ($1, $2, $3, 1, GREATEST(0, 1 - $3), GREATEST(0, 1 - $3) * $4, $5 + GREATEST(0, 1 - $3) * $4)
ON CONFLICT (merchant_id, period_key) DO UPDATE
SET consumed_count = usage_periods.consumed_count + 1,
    included_quota = EXCLUDED.included_quota,
    overage_count  = GREATEST(0, usage_periods.consumed_count + 1 - EXCLUDED.included_quota),
    overage_charge = GREATEST(0, usage_periods.consumed_count + 1 - EXCLUDED.included_quota) * $4,
    total_charge   = $5 + GREATEST(0, usage_periods.consumed_count + 1 - EXCLUDED.included_quota) * $4,
    updated_at     = NOW()
RETURNING merchant_id, period_key, included_quota, consumed_count, overage_count, overage_charge, total_charge, updated_at;
`
	row := r.pool.QueryRow(ctx, query, merchantID, periodKey, includedQuota, overageRate, monthlyFee)
	return scanUsagePeriod(row)
}

func scanUsagePeriod(row pgx.Row) (*domain.UsagePeriod, error) {
	var p domain.UsagePeriod
	if err := row.Scan(
		&p.MerchantID,
		&p.PeriodKey,
		&p.IncludedQuota,
		&p.ConsumedCount,
		&p.OverageCount,
		&p.OverageCharge,
		&p.TotalCharge,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
