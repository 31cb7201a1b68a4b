package model

import "time"

// Timeframe identifies a candle interval.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "1d"
	TimeframeHourly Timeframe = "1h"
	Timeframe15Min  Timeframe = "15m"
)

// Duration returns the wall-clock length of one candle on this timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TimeframeDaily:
		return 24 * time.Hour
	case TimeframeHourly:
		return time.Hour
	case Timeframe15Min:
		return 15 * time.Minute
	}
	return 0
}

// Candle represents a single OHLCV bar. OpenTime and CloseTime bound the
// interval; a candle is closed once CloseTime has elapsed.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
