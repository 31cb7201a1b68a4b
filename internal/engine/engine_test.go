package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wfuentes35/codigo-fut/internal/market"
	"github.com/wfuentes35/codigo-fut/internal/model"
	"github.com/wfuentes35/codigo-fut/internal/pivot"
	"github.com/wfuentes35/codigo-fut/internal/store"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	engine  *Engine
	store   *store.Store
	fetcher *market.MockFetcher
}

// newFixture wires an Engine over temp files and a mock exchange. Each
// symbol gets a prior daily candle of H=110 L=90 C=100, so the pivots are
// PP=100, R1=107.64, R2=112.36, S1=92.36.
func newFixture(t *testing.T, symbols []string, lastClose map[string]float64) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	universeFile := filepath.Join(dir, "symbols.json")
	if err := market.SaveSymbols(universeFile, symbols); err != nil {
		t.Fatal(err)
	}

	candles := make(map[string]map[model.Timeframe][]model.Candle, len(symbols))
	for _, symbol := range symbols {
		close := lastClose[symbol]
		candles[symbol] = map[model.Timeframe][]model.Candle{
			// Closed candles only, newest last: yesterday's daily candle.
			model.TimeframeDaily: {
				{High: 110, Low: 90, Close: 100},
			},
			model.Timeframe15Min: {
				{
					OpenTime:  testNow.Add(-15 * time.Minute),
					CloseTime: testNow.Add(-time.Millisecond),
					Close:     close,
					Volume:    1000,
				},
			},
		}
	}
	fetcher := &market.MockFetcher{Candles: candles}

	st := store.New(filepath.Join(dir, "active.json"), filepath.Join(dir, "closed.json"), logger)
	pivots := pivot.NewService(filepath.Join(dir, "pivots.json"), fetcher, logger)

	eng := New(Options{
		Fetcher:      fetcher,
		Pivots:       pivots,
		Store:        st,
		Logger:       logger,
		Interval:     15 * time.Minute,
		UniverseFile: universeFile,
		Now:          func() time.Time { return testNow },
	})
	return &fixture{engine: eng, store: st, fetcher: fetcher}
}

func seedOpenPosition(t *testing.T, st *store.Store, symbol string) {
	t.Helper()
	active := st.LoadActive()
	active[symbol] = &model.Position{
		Symbol:     symbol,
		Direction:  model.DirectionLong,
		Status:     model.StatusOpen,
		EntryPrice: 100,
		EntryTime:  testNow.Add(-3 * time.Hour),
		TP1Key:     model.LevelR1,
		TP2Key:     model.LevelR2,
		SLKey:      model.LevelS1,
	}
	if err := st.SaveActive(active); err != nil {
		t.Fatal(err)
	}
}

func TestRunOneCycle_ClosesStoppedPosition(t *testing.T) {
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 90})
	seedOpenPosition(t, f.store, "BTCUSDT")

	report := f.engine.RunOneCycle(context.Background())
	if report.Closed != 1 {
		t.Fatalf("expected 1 close, got %d (report %+v)", report.Closed, report)
	}
	if active := f.store.LoadActive(); len(active) != 0 {
		t.Errorf("expected empty active set, got %d", len(active))
	}
	closed := f.store.LoadClosed()
	if len(closed) != 1 {
		t.Fatalf("expected 1 archived position, got %d", len(closed))
	}
	if closed[0].Status != model.StatusClosedSL {
		t.Errorf("expected CLOSED_SL, got %s", closed[0].Status)
	}
	if closed[0].ClosePrice != 90 {
		t.Errorf("expected close price 90, got %.4f", closed[0].ClosePrice)
	}
}

func TestRunOneCycle_QuietPriceKeepsPositionOpen(t *testing.T) {
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 100})
	seedOpenPosition(t, f.store, "BTCUSDT")

	report := f.engine.RunOneCycle(context.Background())
	if report.Closed != 0 || report.Signals != 0 {
		t.Errorf("expected no activity, got %+v", report)
	}
	active := f.store.LoadActive()
	if len(active) != 1 {
		t.Fatalf("expected 1 open position, got %d", len(active))
	}
	if active["BTCUSDT"].Status != model.StatusOpen {
		t.Errorf("position status changed: %s", active["BTCUSDT"].Status)
	}
}

func TestRunOneCycle_FirstTargetMovesPersistedState(t *testing.T) {
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 108})
	seedOpenPosition(t, f.store, "BTCUSDT")

	report := f.engine.RunOneCycle(context.Background())
	if report.TargetsHit != 1 {
		t.Fatalf("expected 1 target hit, got %+v", report)
	}
	active := f.store.LoadActive()
	if len(active) != 1 {
		t.Fatalf("expected position still open, got %d active", len(active))
	}
	if !active["BTCUSDT"].TP1Hit {
		t.Error("tp1_hit flag not persisted")
	}
}

func TestRunOneCycle_FailureIsolation(t *testing.T) {
	f := newFixture(t, []string{"AAAUSDT", "BBBUSDT"}, map[string]float64{
		"AAAUSDT": 100,
		"BBBUSDT": 90,
	})
	f.fetcher.Err = errors.New("exchange unavailable")
	f.fetcher.FailSymbols = map[string]bool{"AAAUSDT": true}
	seedOpenPosition(t, f.store, "AAAUSDT")
	seedOpenPosition(t, f.store, "BBBUSDT")

	report := f.engine.RunOneCycle(context.Background())
	if report.Errors+report.Skipped == 0 {
		t.Error("expected the failing symbol to be counted as skipped or errored")
	}
	if report.Closed != 1 {
		t.Fatalf("expected the healthy symbol to close, got %+v", report)
	}
	active := f.store.LoadActive()
	if _, ok := active["AAAUSDT"]; !ok {
		t.Error("failing symbol's position must survive untouched")
	}
	if _, ok := active["BBBUSDT"]; ok {
		t.Error("stopped position should have been removed")
	}
}

func TestRunOneCycle_NoDuplicatePositionPerSymbol(t *testing.T) {
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 100})
	seedOpenPosition(t, f.store, "BTCUSDT")

	for i := 0; i < 3; i++ {
		f.engine.RunOneCycle(context.Background())
	}
	if active := f.store.LoadActive(); len(active) != 1 {
		t.Errorf("expected exactly 1 open position after repeat cycles, got %d", len(active))
	}
}

func TestRunOneCycle_InsufficientDataIsSkippedNotError(t *testing.T) {
	// The mock serves a single 15m candle, far below the indicator warm-up.
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 100})

	report := f.engine.RunOneCycle(context.Background())
	if report.Errors != 0 {
		t.Errorf("warm-up shortfall must not count as error, got %+v", report)
	}
	if report.Skipped == 0 {
		t.Errorf("expected the symbol to be counted as skipped, got %+v", report)
	}
	if report.Signals != 0 {
		t.Errorf("expected no signals, got %d", report.Signals)
	}
}

func TestRunOneCycle_CreatesShortPosition(t *testing.T) {
	f := newFixture(t, []string{"ETHUSDT"}, map[string]float64{"ETHUSDT": 0})

	// A slow rise with a gentle oscillation keeps every indicator defined
	// (the oscillation guarantees loss candles for the RSI window), then a
	// sharp drop on the final closed candle pulls the fast average below
	// the slow one for the first time at the last index.
	closes := make([]float64, 250)
	for i := 0; i < 249; i++ {
		closes[i] = 100 + 0.02*float64(i) + 0.3*math.Sin(float64(i)/3)
	}
	closes[249] = closes[248] - 20

	series := make([]model.Candle, len(closes))
	base := testNow.Add(-time.Duration(len(closes)) * 15 * time.Minute)
	for i, c := range closes {
		open := base.Add(time.Duration(i) * 15 * time.Minute)
		series[i] = model.Candle{
			OpenTime:  open,
			CloseTime: open.Add(15*time.Minute - time.Millisecond),
			Open:      c,
			High:      c * 1.004,
			Low:       c * 0.996,
			Close:     c,
			Volume:    1000,
		}
	}
	f.fetcher.Candles["ETHUSDT"][model.Timeframe15Min] = series
	// Yesterday's candle places the final close (~84.7..85.3) between
	// R1=84.4867 and R2=86.8467.
	f.fetcher.Candles["ETHUSDT"][model.TimeframeDaily] = []model.Candle{
		{High: 86, Low: 76, Close: 80},
	}

	report := f.engine.RunOneCycle(context.Background())
	if report.Signals != 1 {
		t.Fatalf("expected 1 signal, got %+v", report)
	}
	active := f.store.LoadActive()
	pos := active["ETHUSDT"]
	if pos == nil {
		t.Fatal("position not persisted")
	}
	if pos.Direction != model.DirectionShort || pos.Status != model.StatusOpen {
		t.Fatalf("expected open SHORT, got %s %s", pos.Direction, pos.Status)
	}
	if pos.TP1Hit || pos.TP2Hit {
		t.Error("fresh position must have both target flags false")
	}
	if pos.TP1Key != model.LevelPP || pos.TP2Key != model.LevelS1 || pos.SLKey != model.LevelR2 {
		t.Errorf("wrong level keys: tp1=%s tp2=%s sl=%s", pos.TP1Key, pos.TP2Key, pos.SLKey)
	}
	if pos.EntryPrice != closes[249] {
		t.Errorf("expected entry at last close %.4f, got %.4f", closes[249], pos.EntryPrice)
	}
	if !pos.EntryTime.Equal(testNow) {
		t.Errorf("expected entry time %v, got %v", testNow, pos.EntryTime)
	}
	if got := pos.Annotations["h1_trend_aligned_entry"]; got != "unknown" {
		t.Errorf("expected h1 alignment unknown without hourly data, got %v", got)
	}
	if zone := pos.Annotations["short_entry_zone"]; zone != "Above R1" {
		t.Errorf("expected zone \"Above R1\", got %v", zone)
	}

	// Repeat cycles must neither duplicate nor close the position: the
	// latest price sits between the first target (PP) and the stop (R2).
	for i := 0; i < 2; i++ {
		report = f.engine.RunOneCycle(context.Background())
		if report.Signals != 0 || report.Closed != 0 {
			t.Fatalf("cycle %d: unexpected activity %+v", i+2, report)
		}
	}
	if active = f.store.LoadActive(); len(active) != 1 {
		t.Errorf("invariant broken: %d active positions", len(active))
	}
}

func TestHandleCommand(t *testing.T) {
	f := newFixture(t, []string{"BTCUSDT"}, map[string]float64{"BTCUSDT": 100})
	seedOpenPosition(t, f.store, "BTCUSDT")

	status := f.engine.HandleCommand("/status")
	if !strings.Contains(status, "BTCUSDT") {
		t.Errorf("status should list the open position: %q", status)
	}
	if got := f.engine.HandleCommand("/nonsense"); !strings.Contains(got, "/status") {
		t.Errorf("unknown command should return help text: %q", got)
	}
}
