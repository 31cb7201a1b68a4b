package calculator

import "math"

// ADX computes the average directional index with its +DI/−DI components.
// True range and both directional-movement series are smoothed with the
// same 1/period decay before the directional indicators are formed; the
// resulting directional index is then smoothed a second time with that
// decay.
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(closes)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))

		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	alpha := 1 / float64(period)
	trSmooth := ewmAlpha(tr, alpha)
	plusSmooth := ewmAlpha(plusDM, alpha)
	minusSmooth := ewmAlpha(minusDM, alpha)

	plusDI = make([]float64, n)
	minusDI = make([]float64, n)
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		if trSmooth[i] != 0 {
			plusDI[i] = plusSmooth[i] / trSmooth[i] * 100
			minusDI[i] = minusSmooth[i] / trSmooth[i] * 100
		}
		sum := plusDI[i] + minusDI[i]
		if sum != 0 {
			dx[i] = math.Abs(plusDI[i]-minusDI[i]) / sum * 100
		}
	}
	adx = ewmAlpha(dx, alpha)
	return adx, plusDI, minusDI
}
