package model

import "math"

// IndicatorSnapshot holds the derived series values at one candle index.
// A NaN value means the indicator has not finished its warm-up (or could
// not be computed) and must not participate in a decision.
type IndicatorSnapshot struct {
	EMA8   float64
	EMA24  float64
	EMA50  float64
	EMA100 float64
	EMA200 float64

	RSI      float64 // 14-period, bounded [0,100]
	MACDHist float64 // 12/26/9 histogram

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	VolumeMA20 float64

	ADX     float64
	PlusDI  float64
	MinusDI float64

	EfficiencyRatio float64 // [0,1], NaN when not ready
}

// Ready reports whether every value the signal evaluator reads is valid.
func (s IndicatorSnapshot) Ready() bool {
	for _, v := range []float64{
		s.EMA8, s.EMA24, s.EMA50,
		s.RSI, s.MACDHist, s.BBUpper, s.ADX, s.EfficiencyRatio,
	} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
