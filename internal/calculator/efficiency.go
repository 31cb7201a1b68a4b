package calculator

import "math"

// EfficiencyRatio computes the market-efficiency ratio over the given
// window: net displacement divided by the sum of absolute single-period
// displacements. Values lie in [0,1]. NaN until a full window is available
// and when the window has zero total movement (the ratio is undefined, so
// the index is treated as not ready).
func EfficiencyRatio(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		net := math.Abs(closes[i] - closes[i-period])
		var moves float64
		for j := i - period + 1; j <= i; j++ {
			moves += math.Abs(closes[j] - closes[j-1])
		}
		if moves == 0 {
			continue
		}
		out[i] = net / moves
	}
	return out
}
