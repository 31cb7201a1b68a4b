// Package calculator derives technical indicator series from candle
// sequences. Every function is pure: same candles in, same series out.
package calculator

import (
	"errors"
	"fmt"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// ErrInsufficientData is returned when a candle sequence is shorter than
// the warm-up an indicator set requires.
var ErrInsufficientData = errors.New("insufficient candle data")

// MinCandles is the minimum sequence length for a full snapshot set: the
// 200-period context average plus the efficiency-ratio window.
const MinCandles = 201

// EfficiencyRatioPeriod is the window of the market-efficiency ratio.
const EfficiencyRatioPeriod = 20

// Compute derives one IndicatorSnapshot per candle index. NaN fields mark
// values whose warm-up has not elapsed; callers must never let them reach
// a decision. Fails outright when fewer than MinCandles candles are given
// rather than producing partially valid output.
func Compute(candles []model.Candle) ([]model.IndicatorSnapshot, error) {
	if len(candles) < MinCandles {
		return nil, fmt.Errorf("%w: have %d candles, need %d", ErrInsufficientData, len(candles), MinCandles)
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	ema8 := EMA(closes, 8)
	ema24 := EMA(closes, 24)
	ema50 := EMA(closes, 50)
	ema100 := EMA(closes, 100)
	ema200 := EMA(closes, 200)
	rsi := RSI(closes, 14)
	macdHist := MACDHistogram(closes, 12, 26, 9)
	bbMiddle, bbUpper, bbLower := Bollinger(closes, 20, 2)
	volMA20 := SMA(volumes, 20)
	adx, plusDI, minusDI := ADX(highs, lows, closes, 14)
	er := EfficiencyRatio(closes, EfficiencyRatioPeriod)

	snaps := make([]model.IndicatorSnapshot, n)
	for i := 0; i < n; i++ {
		snaps[i] = model.IndicatorSnapshot{
			EMA8:            ema8[i],
			EMA24:           ema24[i],
			EMA50:           ema50[i],
			EMA100:          ema100[i],
			EMA200:          ema200[i],
			RSI:             rsi[i],
			MACDHist:        macdHist[i],
			BBUpper:         bbUpper[i],
			BBMiddle:        bbMiddle[i],
			BBLower:         bbLower[i],
			VolumeMA20:      volMA20[i],
			ADX:             adx[i],
			PlusDI:          plusDI[i],
			MinusDI:         minusDI[i],
			EfficiencyRatio: er[i],
		}
	}
	return snaps, nil
}
