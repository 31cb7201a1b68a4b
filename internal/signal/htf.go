package signal

import (
	"math"

	"github.com/wfuentes35/codigo-fut/internal/calculator"
	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Alignment is the tri-state outcome of the higher-timeframe confirmation
// check. Unknown is informational, never blocking: insufficient coarse
// data must not veto an otherwise valid signal.
type Alignment int

const (
	AlignmentUnknown Alignment = iota
	AlignmentConfirmed
	AlignmentRejected
)

func (a Alignment) String() string {
	switch a {
	case AlignmentConfirmed:
		return "confirmed"
	case AlignmentRejected:
		return "rejected"
	}
	return "unknown"
}

// minHTFCandles covers the 50-period trend average plus one candle for the
// latest close.
const minHTFCandles = 51

// H1Alignment checks whether the coarser-timeframe trend agrees with the
// proposed direction: for LONG, last close above the 50-period trend
// average with a positive 12/26/9 histogram; for SHORT, the mirror.
func H1Alignment(candles []model.Candle, direction model.Direction) Alignment {
	if len(candles) < minHTFCandles {
		return AlignmentUnknown
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	ema50 := calculator.EMA(closes, 50)
	hist := calculator.MACDHistogram(closes, 12, 26, 9)

	last := len(closes) - 1
	if math.IsNaN(ema50[last]) || math.IsNaN(hist[last]) {
		return AlignmentUnknown
	}

	switch direction {
	case model.DirectionLong:
		if closes[last] > ema50[last] && hist[last] > 0 {
			return AlignmentConfirmed
		}
		return AlignmentRejected
	case model.DirectionShort:
		if closes[last] < ema50[last] && hist[last] < 0 {
			return AlignmentConfirmed
		}
		return AlignmentRejected
	}
	return AlignmentUnknown
}
