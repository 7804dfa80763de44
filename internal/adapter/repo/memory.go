package repo

import (
	"context"
	"sync"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// MemoryMerchantStore is an in-memory domain.MerchantRepository for
// development and test environments where PostgreSQL is not available.
type MemoryMerchantStore struct {
	mu        sync.RWMutex
	merchants map[string]domain.Merchant
}

// NewMemoryMerchantStore seeds the store with the provided merchants.
func NewMemoryMerchantStore(merchants ...domain.Merchant) *MemoryMerchantStore {
	s := &MemoryMerchantStore{merchants: make(map[string]domain.Merchant, len(merchants))}
	for _, m := range merchants {
		s.merchants[m.ID] = m
	}
	return s
}

// Put inserts or replaces a merchant.
func (s *MemoryMerchantStore) Put(m domain.Merchant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[m.ID] = m
}

// GetByID fetches a merchant by identifier.
func (s *MemoryMerchantStore) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.merchants[id]; ok {
		copied := m
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

// GetByAPIKey fetches a merchant by widget API key.
func (s *MemoryMerchantStore) GetByAPIKey(ctx context.Context, key string) (*domain.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.merchants {
		if m.APIKey == key {
			copied := m
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MemoryUsageStore is an in-memory domain.UsageRepository. Increments are
// serialized under one mutex, matching the atomicity contract of the
// PostgreSQL implementation.
type MemoryUsageStore struct {
	mu      sync.Mutex
	periods map[string]domain.UsagePeriod
}

// NewMemoryUsageStore creates an empty usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{periods: make(map[string]domain.UsagePeriod)}
}

func usageKey(merchantID, periodKey string) string {
	return merchantID + "|" + periodKey
}

// Get fetches one usage period row.
func (s *MemoryUsageStore) Get(ctx context.Context, merchantID, periodKey string) (*domain.UsagePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.periods[usageKey(merchantID, periodKey)]; ok {
		copied := p
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

// Increment adds one consumed unit and recomputes the derived charges.
func (s *MemoryUsageStore) Increment(ctx context.Context, merchantID, periodKey string, includedQuota int, overageRate, monthlyFee float64) (*domain.UsagePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey(merchantID, periodKey)
	p, ok := s.periods[key]
	if !ok {
		p = domain.UsagePeriod{MerchantID: merchantID, PeriodKey: periodKey}
	}
	p.IncludedQuota = includedQuota
	p.ConsumedCount++
	p.Recalculate(overageRate, monthlyFee)
	p.UpdatedAt = time.Now()
	s.periods[key] = p

	copied := p
	return &copied, nil
}
