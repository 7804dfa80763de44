package domain

import "context"

// MerchantRepository defines access methods for merchant accounts.
type MerchantRepository interface {
	GetByID(ctx context.Context, id string) (*Merchant, error)
	GetByAPIKey(ctx context.Context, key string) (*Merchant, error)
}

// UsageRepository persists per-merchant, per-month usage counters. Increment
// must be atomic per (merchantID, periodKey) so concurrent successful
// generations never under- or double-count.
type UsageRepository interface {
	Get(ctx context.Context, merchantID, periodKey string) (*UsagePeriod, error)
	Increment(ctx context.Context, merchantID, periodKey string, includedQuota int, overageRate, monthlyFee float64) (*UsagePeriod, error)
}
