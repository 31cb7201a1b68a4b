package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// DefaultBaseURL is the Binance USDT-M futures REST endpoint.
const DefaultBaseURL = "https://fapi.binance.com"

// BinanceFetcher implements Fetcher against the Binance futures klines
// API. Requests are rate limited so a full-universe sweep stays inside the
// exchange's request weight budget.
type BinanceFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter *rate.Limiter
	now     func() time.Time
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, apiKey, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(8), 16),
		now:     time.Now,
	}
}

func (f *BinanceFetcher) Name() string { return "binance-futures" }

// FetchCandles returns up to limit candles for the symbol and timeframe,
// oldest first, trimmed to fully closed candles. A short response is not
// an error; the caller decides whether the sequence is long enough.
func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	// An in-progress candle may occupy the last slot, so over-fetch by one.
	endpoint := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), tf, limit+1)

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s %s: %w", symbol, tf, err)
	}

	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode klines %s %s: %w", symbol, tf, err)
	}

	candles := make([]model.Candle, 0, len(raw))
	for _, k := range raw {
		c, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("parse kline %s %s: %w", symbol, tf, err)
		}
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime.Before(candles[j].OpenTime) })

	// Drop the candle still in progress: crossover logic is only valid on
	// closed candles.
	now := f.now()
	for len(candles) > 0 && candles[len(candles)-1].CloseTime.After(now) {
		candles = candles[:len(candles)-1]
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (f *BinanceFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseKline decodes one Binance kline array:
// [openTime, open, high, low, close, volume, closeTime, ...]
// where times are epoch milliseconds and prices are decimal strings.
func parseKline(k []json.RawMessage) (model.Candle, error) {
	if len(k) < 7 {
		return model.Candle{}, fmt.Errorf("kline has %d fields, need 7", len(k))
	}
	var openMS, closeMS int64
	if err := json.Unmarshal(k[0], &openMS); err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}
	if err := json.Unmarshal(k[6], &closeMS); err != nil {
		return model.Candle{}, fmt.Errorf("close time: %w", err)
	}

	prices := make([]float64, 5) // open, high, low, close, volume
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(k[i+1], &s); err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		prices[i] = v
	}

	return model.Candle{
		OpenTime:  time.UnixMilli(openMS).UTC(),
		CloseTime: time.UnixMilli(closeMS).UTC(),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
	}, nil
}
