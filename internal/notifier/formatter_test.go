package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

func TestFormatEntryDirections(t *testing.T) {
	long := &model.Position{
		Symbol:     "BTCUSDT",
		Direction:  model.DirectionLong,
		EntryPrice: 50123.4567,
		Annotations: map[string]any{
			"rsi_entry": 61.25,
			"adx_entry": 31.4,
		},
	}
	msg := FormatEntry(long)
	if !strings.Contains(msg, "Compra") || !strings.Contains(msg, "BTCUSDT") {
		t.Errorf("long entry message malformed: %q", msg)
	}

	short := &model.Position{
		Symbol:     "ETHUSDT",
		Direction:  model.DirectionShort,
		EntryPrice: 3210.5,
		Annotations: map[string]any{
			"short_entry_zone": "Above R1",
		},
	}
	msg = FormatEntry(short)
	if !strings.Contains(msg, "Venta") || !strings.Contains(msg, "Above R1") {
		t.Errorf("short entry message malformed: %q", msg)
	}
}

func TestFormatStatus(t *testing.T) {
	if got := FormatStatus(nil); !strings.Contains(got, "Sin posiciones") {
		t.Errorf("empty status malformed: %q", got)
	}
	active := map[string]*model.Position{
		"BTCUSDT": {
			Symbol:     "BTCUSDT",
			Direction:  model.DirectionLong,
			EntryPrice: 50000,
			EntryTime:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			TP1Hit:     true,
		},
	}
	got := FormatStatus(active)
	if !strings.Contains(got, "BTCUSDT") || !strings.Contains(got, "TP1") {
		t.Errorf("status missing fields: %q", got)
	}
}

func TestFormatPivotFreshness(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if got := FormatPivotFreshness(100, "2026-03-02", now); !strings.Contains(got, "vigentes") {
		t.Errorf("expected current pivots marker: %q", got)
	}
	if got := FormatPivotFreshness(100, "2026-03-01", now); !strings.Contains(got, "obsoletos") {
		t.Errorf("expected stale pivots marker: %q", got)
	}
}
