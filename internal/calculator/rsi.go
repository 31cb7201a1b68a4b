package calculator

import "math"

// RSI computes the relative strength index from rolling-mean gains and
// losses over the given period. When the loss average is zero the ratio is
// undefined; those indices carry the last valid value forward, matching
// the behavior of the historical data this engine was tuned on.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		if avgLoss == 0 {
			continue // undefined, forward-filled below
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	// Forward-fill gaps after the first valid value.
	last := math.NaN()
	for i := range out {
		if !math.IsNaN(out[i]) {
			last = out[i]
		} else if !math.IsNaN(last) {
			out[i] = last
		}
	}
	return out
}
