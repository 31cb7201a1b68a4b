// Package engine sequences the monitoring cycle: refresh pivots, advance
// open positions, detect new entry signals. It is the only stateful
// driver; everything else is recomputed each cycle from persisted state
// plus fresh market data.
package engine

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wfuentes35/codigo-fut/internal/calculator"
	"github.com/wfuentes35/codigo-fut/internal/lifecycle"
	"github.com/wfuentes35/codigo-fut/internal/market"
	"github.com/wfuentes35/codigo-fut/internal/metrics"
	"github.com/wfuentes35/codigo-fut/internal/model"
	"github.com/wfuentes35/codigo-fut/internal/notifier"
	"github.com/wfuentes35/codigo-fut/internal/pivot"
	"github.com/wfuentes35/codigo-fut/internal/recorder"
	"github.com/wfuentes35/codigo-fut/internal/signal"
	"github.com/wfuentes35/codigo-fut/internal/store"
)

const dayFormat = "2006-01-02"

// signalLookback is how many 15m candles are requested per evaluation:
// enough for the 201-candle warm-up with headroom for data gaps.
const signalLookback = 250

// htfLookback is how many hourly candles feed the alignment check.
const htfLookback = 100

// Options wires an Engine. Notifier, Recorder, Metrics and Now may be left
// zero; they default to no-ops and wall-clock time.
type Options struct {
	Fetcher      market.Fetcher
	Pivots       *pivot.Service
	Store        *store.Store
	Recorder     recorder.Recorder
	Notifier     notifier.Notifier
	Metrics      *metrics.Metrics
	Logger       *logrus.Logger
	Interval     time.Duration
	UniverseFile string
	Now          func() time.Time
}

// Engine runs the monitoring loop. All state lives in the stores; the
// Engine itself only holds collaborators.
type Engine struct {
	fetcher  market.Fetcher
	pivots   *pivot.Service
	store    *store.Store
	recorder recorder.Recorder
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	logger   *logrus.Logger

	interval     time.Duration
	universeFile string
	now          func() time.Time
}

// New creates an Engine from Options.
func New(opts Options) *Engine {
	if opts.Notifier == nil {
		opts.Notifier = notifier.Noop{}
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	return &Engine{
		fetcher:      opts.Fetcher,
		pivots:       opts.Pivots,
		store:        opts.Store,
		recorder:     opts.Recorder,
		notifier:     opts.Notifier,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		interval:     opts.Interval,
		universeFile: opts.UniverseFile,
		now:          opts.Now,
	}
}

// CycleReport summarizes one monitoring cycle.
type CycleReport struct {
	Symbols    int
	Signals    int
	TargetsHit int
	Closed     int
	Skipped    int
	Errors     int
	Duration   time.Duration
}

// Run executes cycles until ctx is cancelled. After each cycle it sleeps
// for the remainder of the target interval; an overrunning cycle is
// followed immediately by the next one, with no catch-up queue.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("monitoring started")
	for {
		report := e.RunOneCycle(ctx)
		e.logger.Infof("cycle done: %d symbols, %d signals, %d tp1, %d closed, %d skipped, %d errors in %s",
			report.Symbols, report.Signals, report.TargetsHit, report.Closed,
			report.Skipped, report.Errors, report.Duration.Round(time.Millisecond))

		wait := e.interval - report.Duration
		if wait <= 0 {
			e.logger.Warnf("cycle overran the %s interval, starting next cycle now", e.interval)
			if ctx.Err() != nil {
				e.logger.Info("monitoring stopped")
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			e.logger.Info("monitoring stopped")
			return nil
		case <-time.After(wait):
		}
	}
}

// RunOneCycle processes the whole universe once. Per-instrument failures
// are contained; only the report reflects them.
func (e *Engine) RunOneCycle(ctx context.Context) CycleReport {
	start := e.now()
	today := start.UTC().Format(dayFormat)
	var report CycleReport

	symbols, err := market.LoadSymbols(e.universeFile)
	if err != nil {
		e.logger.WithError(err).Warn("instrument universe unavailable")
	}
	report.Symbols = len(symbols)

	pivots, refreshed, err := e.pivots.EnsureFresh(ctx, symbols, today)
	if err != nil {
		e.logger.WithError(err).Warn("pivot refresh failed, retrying next cycle")
		pivots = map[string]model.PivotLevels{}
	}
	if refreshed {
		e.sendDailySummary(start)
		e.trySend(notifier.FormatPivotsUpdated(today, len(pivots)))
	}

	active := e.checkActivePositions(ctx, pivots, today, &report)
	e.detectSignals(ctx, symbols, pivots, active, today, &report)

	report.Duration = e.now().Sub(start)
	if e.metrics != nil {
		e.metrics.CyclesTotal.Inc()
		e.metrics.CycleDuration.Observe(report.Duration.Seconds())
	}
	return report
}

// checkActivePositions advances every open position against the latest
// closed 15m price and archives the ones that reached a terminal state.
// Returns the surviving active set so signal detection can respect the
// one-open-position-per-instrument invariant without a re-read.
func (e *Engine) checkActivePositions(ctx context.Context, pivots map[string]model.PivotLevels, today string, report *CycleReport) map[string]*model.Position {
	active := e.store.LoadActive()
	if len(active) == 0 {
		if e.metrics != nil {
			e.metrics.OpenPositions.Set(0)
		}
		return active
	}

	symbols := make([]string, 0, len(active))
	for s := range active {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var newlyClosed []model.Position
	mutated := false

	for _, symbol := range symbols {
		pos := active[symbol]
		if pos.Status != model.StatusOpen {
			continue
		}
		e.guard(symbol, func() {
			levels, ok := pivots[symbol]
			if !ok || !levels.FreshFor(today) {
				e.logger.Warnf("no fresh pivots for %s, lifecycle check deferred", symbol)
				report.Skipped++
				return
			}
			candles, err := e.fetcher.FetchCandles(ctx, symbol, model.Timeframe15Min, 1)
			if err != nil {
				e.logger.WithError(err).Warnf("fetch latest candle for %s", symbol)
				report.Errors++
				return
			}
			if len(candles) == 0 {
				report.Skipped++
				return
			}
			price := candles[len(candles)-1].Close

			switch lifecycle.Advance(pos, price, levels, e.now().UTC()) {
			case lifecycle.OutcomeSkipped:
				e.logger.Warnf("missing level keys for %s, lifecycle check deferred", symbol)
				report.Skipped++
			case lifecycle.OutcomeFirstTarget:
				mutated = true
				report.TargetsHit++
				level, _ := levels.Level(pos.TP1Key)
				e.logger.Infof("TP1 hit for %s (%s) at %.4f", symbol, pos.Direction, price)
				e.trySend(notifier.FormatFirstTarget(pos, price, level))
			case lifecycle.OutcomeClosedTP:
				mutated = true
				report.Closed++
				level, _ := levels.Level(pos.TP2Key)
				e.logger.Infof("TP2 hit for %s (%s) at %.4f", symbol, pos.Direction, price)
				e.trySend(notifier.FormatSecondTarget(pos, price, level))
				newlyClosed = append(newlyClosed, *pos)
				delete(active, symbol)
				e.countClose(pos)
			case lifecycle.OutcomeClosedSL:
				mutated = true
				report.Closed++
				level := pos.EntryPrice
				if !pos.TP1Hit {
					level, _ = levels.Level(pos.SLKey)
				}
				e.logger.Infof("SL hit for %s (%s) at %.4f", symbol, pos.Direction, price)
				e.trySend(notifier.FormatStopLoss(pos, price, level))
				newlyClosed = append(newlyClosed, *pos)
				delete(active, symbol)
				e.countClose(pos)
			}
		})
	}

	if mutated {
		if err := e.store.SaveActive(active); err != nil {
			e.logger.WithError(err).Error("save active positions")
			report.Errors++
		}
	}
	if len(newlyClosed) > 0 {
		if _, err := e.store.MergeClosed(newlyClosed); err != nil {
			e.logger.WithError(err).Error("merge closed positions")
			report.Errors++
		}
		for i := range newlyClosed {
			if err := e.recorder.RecordClosed(&newlyClosed[i]); err != nil {
				e.logger.WithError(err).Warn("record closed position")
			}
		}
	}
	if e.metrics != nil {
		e.metrics.OpenPositions.Set(float64(len(active)))
	}
	return active
}

// detectSignals evaluates entry conditions for every universe instrument
// without an open position and opens at most one position per instrument.
func (e *Engine) detectSignals(ctx context.Context, symbols []string, pivots map[string]model.PivotLevels, active map[string]*model.Position, today string, report *CycleReport) {
	for _, symbol := range symbols {
		if _, open := active[symbol]; open {
			continue
		}
		levels, ok := pivots[symbol]
		if !ok || !levels.FreshFor(today) {
			report.Skipped++
			continue
		}

		e.guard(symbol, func() {
			candles, err := e.fetcher.FetchCandles(ctx, symbol, model.Timeframe15Min, signalLookback)
			if err != nil {
				e.logger.WithError(err).Warnf("fetch candles for %s", symbol)
				report.Errors++
				return
			}
			snaps, err := calculator.Compute(candles)
			if err != nil {
				if errors.Is(err, calculator.ErrInsufficientData) {
					e.logger.Debugf("%s: %v", symbol, err)
					report.Skipped++
				} else {
					e.logger.WithError(err).Warnf("compute indicators for %s", symbol)
					report.Errors++
				}
				return
			}

			entry := signal.Evaluate(symbol, candles, snaps, levels)
			if entry == nil {
				return
			}

			// Best-effort confirmation metadata; never gates admission.
			align := signal.AlignmentUnknown
			if htf, err := e.fetcher.FetchCandles(ctx, symbol, model.TimeframeHourly, htfLookback); err != nil {
				e.logger.WithError(err).Warnf("H1 alignment for %s", symbol)
			} else {
				align = signal.H1Alignment(htf, entry.Direction)
			}
			entry.Annotations["h1_trend_aligned_entry"] = align.String()

			pos := &model.Position{
				Symbol:      symbol,
				Direction:   entry.Direction,
				Status:      model.StatusOpen,
				EntryPrice:  entry.Price,
				EntryTime:   e.now().UTC(),
				TP1Key:      entry.TP1Key,
				TP2Key:      entry.TP2Key,
				SLKey:       entry.SLKey,
				Annotations: entry.Annotations,
			}
			active[symbol] = pos
			if err := e.store.SaveActive(active); err != nil {
				e.logger.WithError(err).Error("save active positions")
				report.Errors++
			}

			report.Signals++
			e.logger.Infof("new %s signal: %s @ %.4f", pos.Direction, symbol, pos.EntryPrice)
			e.trySend(notifier.FormatEntry(pos))
			if err := e.recorder.RecordSignal(pos); err != nil {
				e.logger.WithError(err).Warn("record signal")
			}
			if e.metrics != nil {
				e.metrics.SignalsTotal.WithLabelValues(string(pos.Direction)).Inc()
				e.metrics.OpenPositions.Set(float64(len(active)))
			}
		})
	}
	if e.metrics != nil {
		e.metrics.SymbolsSkipped.Add(float64(report.Skipped))
	}
}

// sendDailySummary tallies the prior UTC day's closes on day rollover.
func (e *Engine) sendDailySummary(now time.Time) {
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayFormat)
	var wins, losses int
	for _, p := range e.store.LoadClosed() {
		if p.CloseTime.UTC().Format(dayFormat) != yesterday {
			continue
		}
		switch p.Status {
		case model.StatusClosedTP:
			wins++
		case model.StatusClosedSL:
			losses++
		}
	}
	if wins+losses == 0 {
		return
	}
	e.trySend(notifier.FormatDailySummary(yesterday, wins, losses, wins+losses))
}

// HandleCommand serves the Telegram command interface.
func (e *Engine) HandleCommand(command string) string {
	switch command {
	case "/status":
		return notifier.FormatStatus(e.store.LoadActive())
	case "/summary":
		return notifier.FormatClosedSummary(e.store.LoadClosed())
	case "/pivots":
		pivots := e.pivots.Load()
		day := ""
		for _, p := range pivots {
			day = p.Date
			break
		}
		return notifier.FormatPivotFreshness(len(pivots), day, e.now())
	default:
		return "Comandos:\n• /status\n• /summary\n• /pivots"
	}
}

// countClose bumps the close metric for a terminal position.
func (e *Engine) countClose(pos *model.Position) {
	if e.metrics != nil {
		e.metrics.ClosedTotal.WithLabelValues(string(pos.Status)).Inc()
	}
}

// trySend delivers a notification best-effort.
func (e *Engine) trySend(text string) {
	if err := e.notifier.Send(text); err != nil {
		e.logger.WithError(err).Warn("send notification")
	}
}

// guard contains an unexpected panic to the instrument being processed so
// the rest of the cycle, and the loop, keep running.
func (e *Engine) guard(symbol string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("panic while processing %s: %v\n%s", symbol, r, debug.Stack())
		}
	}()
	fn()
}
