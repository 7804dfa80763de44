package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// DefaultOverageRate is the flat USD charge per generation above plan quota.
const DefaultOverageRate = 0.08

// Ledger answers quota checks and records consumption against monthly usage
// periods. Period rows are created lazily on first consumption; the overage
// fields are re-derived from the counter on every increment so they can never
// drift.
type Ledger struct {
	merchants   domain.MerchantRepository
	usage       domain.UsageRepository
	overageRate float64
	now         func() time.Time
}

// NewLedger builds a Ledger. rate <= 0 selects DefaultOverageRate.
func NewLedger(merchants domain.MerchantRepository, usage domain.UsageRepository, rate float64) *Ledger {
	if rate <= 0 {
		rate = DefaultOverageRate
	}
	return &Ledger{
		merchants:   merchants,
		usage:       usage,
		overageRate: rate,
		now:         time.Now,
	}
}

// CheckQuota reports whether merchantID may start another generation in the
// current period. It must be consulted before the provider call so exhausted
// merchants fail fast.
func (l *Ledger) CheckQuota(ctx context.Context, merchantID string) (domain.QuotaStatus, error) {
	merchant, err := l.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return domain.QuotaStatus{}, fmt.Errorf("load merchant: %w", err)
	}

	limit := merchant.Plan.IncludedQuota()
	used := 0
	period, err := l.usage.Get(ctx, merchantID, domain.PeriodKey(l.now()))
	if err == nil {
		used = period.ConsumedCount
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.QuotaStatus{}, fmt.Errorf("load usage period: %w", err)
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return domain.QuotaStatus{
		Allowed:   used < limit,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}, nil
}

// RecordUsage increments the current period by exactly one unit and returns
// the updated row. Called once per successful non-cached generation.
func (l *Ledger) RecordUsage(ctx context.Context, merchantID string) (*domain.UsagePeriod, error) {
	merchant, err := l.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("load merchant: %w", err)
	}

	period, err := l.usage.Increment(ctx,
		merchantID,
		domain.PeriodKey(l.now()),
		merchant.Plan.IncludedQuota(),
		l.overageRate,
		merchant.Plan.MonthlyFee(),
	)
	if err != nil {
		return nil, fmt.Errorf("increment usage: %w", err)
	}
	return period, nil
}
