// Package market supplies OHLCV candle data and the tradable-instrument
// universe.
package market

import (
	"context"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Fetcher supplies ordered candle sequences for an instrument and
// timeframe. Implementations must only return closed candles and may
// return fewer candles than requested when the source has gaps.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error)
	Name() string
}
