package tryon

// CostModel estimates the USD cost of one provider invocation: a fixed
// per-call base fee plus linear terms over the input byte volume (a proxy for
// input tokens) and the analysis text length (a proxy for output tokens). The
// coefficients are configuration, not correctness; the estimate only has to be
// monotonic in both inputs and never negative.
type CostModel struct {
	BaseFee       float64
	PerInputKB    float64
	PerOutputChar float64
}

// DefaultCostModel approximates current image-model pricing.
func DefaultCostModel() CostModel {
	return CostModel{
		BaseFee:       0.04,
		PerInputKB:    0.00002,
		PerOutputChar: 0.000004,
	}
}

// Estimate returns the projected cost for inputBytes of image payload and
// analysisChars of returned text.
func (m CostModel) Estimate(inputBytes, analysisChars int) float64 {
	if inputBytes < 0 {
		inputBytes = 0
	}
	if analysisChars < 0 {
		analysisChars = 0
	}

	cost := m.BaseFee +
		m.PerInputKB*float64(inputBytes)/1024 +
		m.PerOutputChar*float64(analysisChars)
	if cost < 0 {
		return 0
	}
	return cost
}
