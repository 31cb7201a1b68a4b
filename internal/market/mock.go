package market

import (
	"context"
	"time"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Candles maps symbol -> timeframe -> full candle sequence. FetchCandles
	// serves the tail of the sequence up to the requested limit.
	Candles map[string]map[model.Timeframe][]model.Candle
	// Err, when set, is returned by every fetch for symbols in FailSymbols
	// (or for all symbols when FailSymbols is empty).
	Err         error
	FailSymbols map[string]bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	if m.Err != nil && (len(m.FailSymbols) == 0 || m.FailSymbols[symbol]) {
		return nil, m.Err
	}
	candles := m.Candles[symbol][tf]
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// GenerateCandles builds a deterministic drifting series around basePrice,
// one candle per interval ending just before now.
func GenerateCandles(basePrice float64, count int, tf model.Timeframe, now time.Time) []model.Candle {
	interval := tf.Duration()
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		open := now.Add(-time.Duration(count-i) * interval)
		candles[i] = model.Candle{
			OpenTime:  open,
			CloseTime: open.Add(interval - time.Millisecond),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return candles
}
