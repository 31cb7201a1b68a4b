package model

import "time"

// Direction of a position.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Status of a position. OPEN is the only non-terminal state.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusClosedTP Status = "CLOSED_TP"
	StatusClosedSL Status = "CLOSED_SL"
)

// Position is the central mutable entity of the engine. At most one open
// Position exists per instrument at any time. The lifecycle state machine
// mutates it in place each cycle until a terminal status is reached, after
// which it is immutable.
//
// Annotations is a free-form bag of entry-time metadata (indicator values,
// confirmation flags) kept for offline analysis; lifecycle logic never
// reads it.
type Position struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"entry_type"`
	Status     Status    `json:"status"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_date"`

	TP1Hit bool `json:"tp1_hit"`
	TP2Hit bool `json:"tp2_hit"`

	TP1Key LevelKey `json:"tp1_key"`
	TP2Key LevelKey `json:"tp2_key"`
	SLKey  LevelKey `json:"sl_key"`

	ClosePrice float64   `json:"close_price,omitempty"`
	CloseTime  time.Time `json:"close_date,omitzero"`

	Annotations map[string]any `json:"annotations,omitempty"`
}

// Key identifies a position for closed-history deduplication.
func (p Position) Key() string {
	return p.Symbol + "|" + p.EntryTime.UTC().Format(time.RFC3339Nano)
}
