package tryon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostEstimateBaseline(t *testing.T) {
	m := DefaultCostModel()
	require.InDelta(t, m.BaseFee, m.Estimate(0, 0), 1e-9)
}

func TestCostEstimateLinearTerms(t *testing.T) {
	m := CostModel{BaseFee: 0.04, PerInputKB: 0.001, PerOutputChar: 0.0001}

	// 2048 bytes = 2 KB of input, 100 chars of analysis.
	got := m.Estimate(2048, 100)
	require.InDelta(t, 0.04+0.002+0.01, got, 1e-9)
}

func TestCostEstimateMonotonic(t *testing.T) {
	m := DefaultCostModel()

	base := m.Estimate(1024, 100)
	require.GreaterOrEqual(t, m.Estimate(2048, 100), base)
	require.GreaterOrEqual(t, m.Estimate(1024, 500), base)
	require.GreaterOrEqual(t, m.Estimate(2048, 500), base)
}

func TestCostEstimateNeverNegative(t *testing.T) {
	tests := []struct {
		name  string
		model CostModel
		bytes int
		chars int
	}{
		{"negative inputs clamp to zero", DefaultCostModel(), -100, -5},
		{"zero model", CostModel{}, 5000, 300},
		{"negative base fee", CostModel{BaseFee: -1}, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.GreaterOrEqual(t, tc.model.Estimate(tc.bytes, tc.chars), 0.0)
		})
	}
}
