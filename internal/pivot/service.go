package pivot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wfuentes35/codigo-fut/internal/market"
	"github.com/wfuentes35/codigo-fut/internal/model"
	"github.com/wfuentes35/codigo-fut/internal/store"
)

// Service maintains the daily pivot snapshot file: one labeled level set
// per instrument, recomputed once per UTC day from the prior day's daily
// candle.
type Service struct {
	file    string
	fetcher market.Fetcher
	logger  *logrus.Logger
}

// NewService creates a pivot Service backed by the given snapshot file.
func NewService(file string, fetcher market.Fetcher, logger *logrus.Logger) *Service {
	return &Service{file: file, fetcher: fetcher, logger: logger}
}

// Load reads the pivot snapshot from disk. A missing or corrupt file
// degrades to an empty snapshot with a warning; it never fails hard.
func (s *Service) Load() map[string]model.PivotLevels {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warnf("read pivot file %s, using empty snapshot", s.file)
		}
		return map[string]model.PivotLevels{}
	}
	var pivots map[string]model.PivotLevels
	if err := json.Unmarshal(data, &pivots); err != nil {
		s.logger.WithError(err).Warnf("decode pivot file %s, using empty snapshot", s.file)
		return map[string]model.PivotLevels{}
	}
	return pivots
}

// Fresh reports whether the snapshot holds levels computed for the given
// UTC day.
func (s *Service) Fresh(pivots map[string]model.PivotLevels, day string) bool {
	for _, p := range pivots {
		if p.FreshFor(day) {
			return true
		}
	}
	return false
}

// Refresh recomputes pivots for every symbol from the prior day's daily
// candle and atomically replaces the snapshot file. Symbols whose candles
// cannot be fetched are skipped with a warning.
func (s *Service) Refresh(ctx context.Context, symbols []string, day string) (map[string]model.PivotLevels, error) {
	pivots := make(map[string]model.PivotLevels, len(symbols))
	for _, symbol := range symbols {
		candles, err := s.fetcher.FetchCandles(ctx, symbol, model.TimeframeDaily, 1)
		if err != nil {
			s.logger.WithError(err).Warnf("pivots: fetch daily candle for %s", symbol)
			continue
		}
		if len(candles) == 0 {
			s.logger.Warnf("pivots: %s returned no closed daily candle", symbol)
			continue
		}
		// Fetchers only return closed candles, so the newest one is the
		// prior day's.
		prior := candles[len(candles)-1]
		pivots[symbol] = model.PivotLevels{
			Date:   day,
			Levels: Fibonacci(prior.High, prior.Low, prior.Close),
		}
	}
	if len(pivots) == 0 {
		return nil, fmt.Errorf("pivots: no levels computed for %s", day)
	}

	data, err := json.MarshalIndent(pivots, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pivots: marshal snapshot: %w", err)
	}
	if err := store.WriteAtomic(s.file, data); err != nil {
		return nil, fmt.Errorf("pivots: write snapshot: %w", err)
	}
	s.logger.Infof("pivots: %d level sets stored for %s", len(pivots), day)
	return pivots, nil
}

// EnsureFresh returns the pivot snapshot for the given UTC day, refreshing
// it first when the stored one is stale or missing. The refreshed flag
// tells the caller a day rollover happened.
func (s *Service) EnsureFresh(ctx context.Context, symbols []string, day string) (map[string]model.PivotLevels, bool, error) {
	pivots := s.Load()
	if s.Fresh(pivots, day) {
		return pivots, false, nil
	}
	refreshed, err := s.Refresh(ctx, symbols, day)
	if err != nil {
		return nil, false, err
	}
	return refreshed, true, nil
}
