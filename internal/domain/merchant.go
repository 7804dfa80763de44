package domain

import "time"

// Plan enumerates the subscription tiers.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanScale   Plan = "scale"
)

// IncludedQuota returns the number of generations bundled with the plan per
// calendar month.
func (p Plan) IncludedQuota() int {
	switch p {
	case PlanGrowth:
		return 2000
	case PlanScale:
		return 5000
	default:
		return 500
	}
}

// MonthlyFee returns the flat subscription fee for the plan in USD.
func (p Plan) MonthlyFee() float64 {
	switch p {
	case PlanGrowth:
		return 79
	case PlanScale:
		return 199
	default:
		return 29
	}
}

// Merchant represents a storefront account embedding the widget.
type Merchant struct {
	ID        string
	Name      string
	APIKey    string
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}
