package market

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wfuentes35/codigo-fut/internal/store"
)

// TopSymbols ranks USDT-quoted perpetual tickers by 24h quote volume and
// returns the best limit symbols. Quarterly-delivery contracts (those with
// an underscore suffix) are excluded.
func (f *BinanceFetcher) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	body, err := f.get(ctx, f.BaseURL+"/fapi/v1/ticker/24hr")
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var tickers []struct {
		Symbol      string `json:"symbol"`
		QuoteVolume string `json:"quoteVolume"`
	}
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}

	type ranked struct {
		symbol string
		volume float64
	}
	pairs := make([]ranked, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, "USDT") || strings.Contains(t.Symbol, "_") {
			continue
		}
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, ranked{symbol: t.Symbol, volume: vol})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no USDT pairs in ticker response")
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].volume > pairs[j].volume })
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	symbols := make([]string, len(pairs))
	for i, p := range pairs {
		symbols[i] = p.symbol
	}
	return symbols, nil
}

// LoadSymbols reads the instrument universe file.
func LoadSymbols(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("decode universe file: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("universe file %s is empty", path)
	}
	return symbols, nil
}

// SaveSymbols atomically writes the instrument universe file.
func SaveSymbols(path string, symbols []string) error {
	data, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("marshal universe: %w", err)
	}
	return store.WriteAtomic(path, data)
}
