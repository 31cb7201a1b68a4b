// Package signal decides whether the latest closed candle of an
// instrument opens a directional position.
package signal

import (
	"math"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Entry is a directional entry decision with the level keys that will
// drive the position's lifecycle and the entry-time metadata recorded for
// offline analysis.
type Entry struct {
	Symbol      string
	Direction   model.Direction
	Price       float64
	TP1Key      model.LevelKey
	TP2Key      model.LevelKey
	SLKey       model.LevelKey
	Annotations map[string]any
}

// Evaluate tests the two directional entry conditions against the latest
// two snapshots and the day's pivot levels. First match wins; nil means no
// entry this cycle.
//
// LONG requires the fast/slow cross up inside the S1..R1 zone plus the
// momentum, strength and volatility filters. SHORT is deliberately tested
// with only the cross down and the R1..R3 zone: the unfiltered short
// sample is kept for observation, and the remaining indicators are
// recorded but never gate the trade.
func Evaluate(symbol string, candles []model.Candle, snaps []model.IndicatorSnapshot, levels model.PivotLevels) *Entry {
	if len(candles) < 2 || len(snaps) != len(candles) {
		return nil
	}
	prev, last := snaps[len(snaps)-2], snaps[len(snaps)-1]
	if !prev.Ready() || !last.Ready() {
		return nil
	}

	r1, okR1 := levels.Level(model.LevelR1)
	r3, okR3 := levels.Level(model.LevelR3)
	s1, okS1 := levels.Level(model.LevelS1)
	r2, okR2 := levels.Level(model.LevelR2)
	if _, okPP := levels.Level(model.LevelPP); !okR1 || !okR2 || !okR3 || !okS1 || !okPP {
		return nil
	}

	price := candles[len(candles)-1].Close
	crossUp := prev.EMA24 < prev.EMA50 && last.EMA24 > last.EMA50
	crossDown := prev.EMA24 > prev.EMA50 && last.EMA24 < last.EMA50

	var direction model.Direction
	switch {
	case crossUp && s1 < price && price < r1 &&
		last.MACDHist > 0 &&
		last.RSI > 50 && last.RSI < 70 &&
		last.ADX > 25 &&
		price < last.BBUpper:
		direction = model.DirectionLong
	case crossDown && r1 < price && price < r3:
		direction = model.DirectionShort
	default:
		return nil
	}

	entry := &Entry{
		Symbol:      symbol,
		Direction:   direction,
		Price:       price,
		Annotations: annotate(candles, last, direction, price, r1, r2),
	}
	if direction == model.DirectionLong {
		entry.TP1Key, entry.TP2Key, entry.SLKey = model.LevelR1, model.LevelR2, model.LevelS1
	} else {
		entry.TP1Key, entry.TP2Key, entry.SLKey = model.LevelPP, model.LevelS1, model.LevelR2
	}
	return entry
}

// annotate collects the entry-time metadata bag. These values are stored
// on the position for later analysis only; nothing downstream reads them.
func annotate(candles []model.Candle, last model.IndicatorSnapshot, direction model.Direction, price, r1, r2 float64) map[string]any {
	n := len(candles)
	lastVol := candles[n-1].Volume

	// Volume change vs the mean of the preceding hour of 15m candles.
	volPctChange := 0.0
	if n >= 5 {
		var sum float64
		for _, c := range candles[n-5 : n-1] {
			sum += c.Volume
		}
		priorHour := sum / 4
		if priorHour > 0 {
			volPctChange = (lastVol - priorHour) / priorHour * 100
		}
	}

	volRatio := 0.0
	if !math.IsNaN(last.VolumeMA20) && last.VolumeMA20 > 0 {
		volRatio = lastVol / last.VolumeMA20
	}

	annotations := map[string]any{
		"vol_pct_change_entry":   round(volPctChange, 2),
		"vol_ratio_entry":        round(volRatio, 2),
		"rsi_entry":              round(last.RSI, 2),
		"macd_hist_entry":        round(last.MACDHist, 6),
		"bb_upper_entry":         round(last.BBUpper, 4),
		"adx_entry":              round(last.ADX, 2),
		"ema_8_below_24_entry":   last.EMA8 < last.EMA24,
		"ema_100_context":        price > last.EMA100,
		"ema_200_context":        price > last.EMA200,
		"efficiency_ratio_entry": round(last.EfficiencyRatio, 3),
	}
	if !math.IsNaN(last.BBLower) {
		annotations["bb_lower_entry"] = round(last.BBLower, 4)
	}
	if !math.IsNaN(last.PlusDI) {
		annotations["plus_di_entry"] = round(last.PlusDI, 2)
	}
	if !math.IsNaN(last.MinusDI) {
		annotations["minus_di_entry"] = round(last.MinusDI, 2)
	}
	if direction == model.DirectionShort {
		annotations["short_entry_zone"] = shortZone(price, r1, r2)
	}
	return annotations
}

// shortZone labels where in the resistance band a short entry fired.
func shortZone(price, r1, r2 float64) string {
	switch {
	case price > r2:
		return "Above R2"
	case price > r1:
		return "Above R1"
	}
	return ""
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
