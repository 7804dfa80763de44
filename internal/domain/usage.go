package domain

import "time"

// UsagePeriod is one merchant's accounting row for one calendar month. Rows
// are created lazily on first consumption and never deleted; the next month
// simply opens a new row.
type UsagePeriod struct {
	MerchantID    string
	PeriodKey     string
	IncludedQuota int
	ConsumedCount int
	OverageCount  int
	OverageCharge float64
	TotalCharge   float64
	UpdatedAt     time.Time
}

// Recalculate re-derives the overage fields from the consumed count, the
// included quota and the flat per-unit overage rate. It is invoked on every
// increment so the derived columns can never drift from the counter.
func (p *UsagePeriod) Recalculate(overageRate, monthlyFee float64) {
	p.OverageCount = p.ConsumedCount - p.IncludedQuota
	if p.OverageCount < 0 {
		p.OverageCount = 0
	}
	p.OverageCharge = float64(p.OverageCount) * overageRate
	p.TotalCharge = monthlyFee + p.OverageCharge
}

// QuotaStatus is the answer to a pre-generation quota check.
type QuotaStatus struct {
	Allowed   bool
	Used      int
	Limit     int
	Remaining int
}

// PeriodKey formats t as the calendar-month accounting key, e.g. "2025-03".
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
