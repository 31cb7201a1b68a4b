package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

func makeCandles(closes []float64) []model.Candle {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		open := now.Add(time.Duration(i) * 15 * time.Minute)
		candles[i] = model.Candle{
			OpenTime:  open,
			CloseTime: open.Add(15*time.Minute - time.Millisecond),
			Open:      c * 0.999,
			High:      c * 1.004,
			Low:       c * 0.996,
			Close:     c,
			Volume:    1000,
		}
	}
	return candles
}

// oscillating builds a series with both gains and losses so every
// indicator, RSI included, has valid values after warm-up.
func oscillating(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)/5) + float64(i)*0.01
	}
	return closes
}

func TestCompute_InsufficientData(t *testing.T) {
	candles := makeCandles(oscillating(MinCandles - 1))
	_, err := Compute(candles)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCompute_LastSnapshotReady(t *testing.T) {
	candles := makeCandles(oscillating(250))
	snaps, err := Compute(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != len(candles) {
		t.Fatalf("expected %d snapshots, got %d", len(candles), len(snaps))
	}
	last := snaps[len(snaps)-1]
	if !last.Ready() {
		t.Errorf("last snapshot not ready: %+v", last)
	}
	if snaps[0].Ready() {
		t.Error("first snapshot should not be ready before warm-up")
	}
}

func TestEMA_WarmupAndConstant(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 42
	}
	ema := EMA(values, 10)
	for i := 0; i < 9; i++ {
		if !math.IsNaN(ema[i]) {
			t.Errorf("index %d: expected NaN during warm-up, got %f", i, ema[i])
		}
	}
	for i := 9; i < len(ema); i++ {
		if math.Abs(ema[i]-42) > 1e-9 {
			t.Errorf("index %d: expected 42, got %f", i, ema[i])
		}
	}
}

func TestEMA_TracksDirection(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	ema := EMA(values, 10)
	last := ema[len(ema)-1]
	if last >= values[len(values)-1] {
		t.Errorf("EMA should lag a rising series: ema=%f last=%f", last, values[len(values)-1])
	}
	if last <= values[len(values)-20] {
		t.Errorf("EMA lags too much: ema=%f", last)
	}
}

func TestRSI_BoundsAndWarmup(t *testing.T) {
	rsi := RSI(oscillating(100), 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Errorf("index %d: expected NaN during warm-up, got %f", i, rsi[i])
		}
	}
	for i := 14; i < len(rsi); i++ {
		if math.IsNaN(rsi[i]) {
			t.Errorf("index %d: unexpected NaN after warm-up", i)
			continue
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("index %d: RSI out of bounds: %f", i, rsi[i])
		}
	}
}

func TestRSI_ForwardFillOnZeroLoss(t *testing.T) {
	// Mixed start so an RSI value exists, then a pure-gain stretch long
	// enough that the rolling loss window empties.
	closes := []float64{100, 99, 100, 98, 101, 99, 102, 100, 103, 101, 104, 102, 105, 103, 106, 104}
	for i := 0; i < 30; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
	}
	rsi := RSI(closes, 14)
	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		t.Fatal("expected forward-filled RSI during pure-gain stretch, got NaN")
	}
	if last < 0 || last > 100 {
		t.Errorf("forward-filled RSI out of bounds: %f", last)
	}
}

func TestMACDHistogram_WarmupAndConstant(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42
	}
	hist := MACDHistogram(values, 12, 26, 9)
	warmup := 26 + 9 - 2
	for i := 0; i < warmup; i++ {
		if !math.IsNaN(hist[i]) {
			t.Errorf("index %d: expected NaN during warm-up, got %f", i, hist[i])
		}
	}
	for i := warmup; i < len(hist); i++ {
		if math.Abs(hist[i]) > 1e-9 {
			t.Errorf("index %d: constant series should give zero histogram, got %f", i, hist[i])
		}
	}
}

func TestBollinger_ConstantSeries(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 50
	}
	middle, upper, lower := Bollinger(values, 20, 2)
	last := len(values) - 1
	if middle[last] != 50 || upper[last] != 50 || lower[last] != 50 {
		t.Errorf("constant series: expected all bands at 50, got m=%f u=%f l=%f",
			middle[last], upper[last], lower[last])
	}
	if !math.IsNaN(upper[10]) {
		t.Errorf("expected NaN during warm-up, got %f", upper[10])
	}
}

func TestBollinger_BandOrdering(t *testing.T) {
	middle, upper, lower := Bollinger(oscillating(60), 20, 2)
	for i := 20; i < 60; i++ {
		if upper[i] < middle[i] || middle[i] < lower[i] {
			t.Errorf("index %d: band ordering violated: u=%f m=%f l=%f", i, upper[i], middle[i], lower[i])
		}
	}
}

func TestADX_NonNegative(t *testing.T) {
	closes := oscillating(100)
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c * 1.01
		lows[i] = c * 0.99
	}
	adx, plusDI, minusDI := ADX(highs, lows, closes, 14)
	for i := 30; i < len(adx); i++ {
		if adx[i] < 0 || adx[i] > 100 {
			t.Errorf("index %d: ADX out of bounds: %f", i, adx[i])
		}
		if plusDI[i] < 0 || minusDI[i] < 0 {
			t.Errorf("index %d: negative DI: +%f -%f", i, plusDI[i], minusDI[i])
		}
	}
}

func TestEfficiencyRatio_Monotonic(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	er := EfficiencyRatio(values, 20)
	for i := 0; i < 20; i++ {
		if !math.IsNaN(er[i]) {
			t.Errorf("index %d: expected NaN during warm-up, got %f", i, er[i])
		}
	}
	for i := 20; i < len(er); i++ {
		if math.Abs(er[i]-1) > 1e-9 {
			t.Errorf("index %d: straight line should have ratio 1, got %f", i, er[i])
		}
	}
}

func TestEfficiencyRatio_FlatIsNaN(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100
	}
	er := EfficiencyRatio(values, 20)
	for i := 20; i < len(er); i++ {
		if !math.IsNaN(er[i]) {
			t.Errorf("index %d: flat series should be NaN, got %f", i, er[i])
		}
	}
}

func TestEfficiencyRatio_Bounds(t *testing.T) {
	er := EfficiencyRatio(oscillating(80), 20)
	for i := 20; i < len(er); i++ {
		if math.IsNaN(er[i]) {
			continue
		}
		if er[i] < 0 || er[i] > 1 {
			t.Errorf("index %d: ratio out of [0,1]: %f", i, er[i])
		}
	}
}
