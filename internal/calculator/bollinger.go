package calculator

import "math"

// Bollinger computes the volatility bands: a period moving average plus and
// minus width sample standard deviations. NaN before the first full window.
func Bollinger(closes []float64, period int, width float64) (middle, upper, lower []float64) {
	middle = SMA(closes, period)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	if period < 2 || len(closes) < period {
		return middle, upper, lower
	}

	for i := period - 1; i < len(closes); i++ {
		mean := middle[i]
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(period-1))
		upper[i] = mean + width*std
		lower[i] = mean - width*std
	}
	return middle, upper, lower
}
