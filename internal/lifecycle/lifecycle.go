// Package lifecycle advances open positions through their take-profit and
// stop-loss stages.
package lifecycle

import (
	"time"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Outcome reports what, if anything, Advance did to a position this cycle.
type Outcome int

const (
	// OutcomeNone: no rule matched; the position is unchanged.
	OutcomeNone Outcome = iota
	// OutcomeSkipped: levels or level keys were missing; the position is
	// unchanged and will be retried next cycle.
	OutcomeSkipped
	// OutcomeFirstTarget: the first target was just hit; the position stays
	// open with its stop moved to break-even.
	OutcomeFirstTarget
	// OutcomeClosedTP: the second target was hit; the position is terminal.
	OutcomeClosedTP
	// OutcomeClosedSL: the stop (or break-even stop) was breached; the
	// position is terminal.
	OutcomeClosedSL
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFirstTarget:
		return "tp1"
	case OutcomeClosedTP:
		return "closed_tp"
	case OutcomeClosedSL:
		return "closed_sl"
	}
	return "none"
}

// Advance applies the transition rules to an open position given the
// latest closed-candle price and the day's pivot levels. Rules are tested
// in strict order and at most one fires per cycle:
//
//  1. stop breached (break-even once the first target has been hit)
//  2. second target reached (implies the first)
//  3. first target reached (flag only, position stays open)
//
// The position is mutated in place; terminal outcomes fill the close
// price, close time and status.
func Advance(pos *model.Position, price float64, levels model.PivotLevels, now time.Time) Outcome {
	if pos.Status != model.StatusOpen {
		return OutcomeNone
	}

	tp1, ok1 := levels.Level(pos.TP1Key)
	tp2, ok2 := levels.Level(pos.TP2Key)
	sl, okSL := levels.Level(pos.SLKey)
	if !ok1 || !ok2 || !okSL {
		return OutcomeSkipped
	}

	isLong := pos.Direction == model.DirectionLong

	// Once the first target has banked partial profit, the stop moves to
	// the entry price so the trade cannot finish as a net loss.
	if pos.TP1Hit {
		sl = pos.EntryPrice
	}

	if (isLong && price < sl) || (!isLong && price > sl) {
		pos.Status = model.StatusClosedSL
		pos.ClosePrice = price
		pos.CloseTime = now
		return OutcomeClosedSL
	}

	if (isLong && price > tp2) || (!isLong && price < tp2) {
		pos.TP1Hit = true
		pos.TP2Hit = true
		pos.Status = model.StatusClosedTP
		pos.ClosePrice = price
		pos.CloseTime = now
		return OutcomeClosedTP
	}

	if !pos.TP1Hit && ((isLong && price > tp1) || (!isLong && price < tp1)) {
		pos.TP1Hit = true
		return OutcomeFirstTarget
	}

	return OutcomeNone
}
