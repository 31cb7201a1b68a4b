package calculator

import "math"

// MACDHistogram computes the moving-average-convergence-divergence
// histogram: EMA(fast) − EMA(slow), minus its EMA(signal) smoothing.
// Indices before the combined warm-up (slow + signal) are NaN.
func MACDHistogram(closes []float64, fast, slow, signal int) []float64 {
	emaFast := ewmSpan(closes, fast)
	emaSlow := ewmSpan(closes, slow)

	line := make([]float64, len(closes))
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := ewmSpan(line, signal)

	out := make([]float64, len(closes))
	warmup := slow + signal - 2
	for i := range out {
		if i < warmup {
			out[i] = math.NaN()
			continue
		}
		out[i] = line[i] - sig[i]
	}
	return out
}
