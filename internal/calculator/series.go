package calculator

import "math"

// nanSlice returns a slice of the given length filled with NaN.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// ewmAlpha applies exponential smoothing with the given decay constant,
// seeded from the first value. Values are defined from index 0.
func ewmAlpha(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// ewmSpan applies exponential smoothing with the 2/(period+1) decay
// convention.
func ewmSpan(values []float64, period int) []float64 {
	return ewmAlpha(values, 2/(float64(period)+1))
}

// EMA computes the exponential moving average of values over the given
// period. Indices before period-1 are NaN: the warm-up has not elapsed.
func EMA(values []float64, period int) []float64 {
	out := ewmSpan(values, period)
	for i := 0; i < period-1 && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the simple moving average of values over the given period,
// with NaN before the first full window.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
