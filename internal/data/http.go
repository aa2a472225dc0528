package data

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

	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// HTTPProvider loads daily closes from a Binance-style klines REST
// endpoint.
type HTTPProvider struct {
	logger     *zap.Logger
	baseURL    string
	interval   string
	httpClient *http.Client
}

// NewHTTPProvider creates a live price provider.
func NewHTTPProvider(logger *zap.Logger, cfg types.DataConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	interval := cfg.Interval
	if interval == "" {
		interval = "1d"
	}
	return &HTTPProvider{
		logger:     logger,
		baseURL:    cfg.BaseURL,
		interval:   interval,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Load fetches klines in [start, end] and returns them as an ordered
// (timestamp, close) series.
func (p *HTTPProvider) Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error) {
	if p.baseURL == "" {
		return nil, &types.DataError{Symbol: symbol, Reason: "no live data source configured"}
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", p.interval)
	q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	q.Set("limit", "1000")

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", p.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build klines request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("klines request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("klines request returned %d: %s", resp.StatusCode, string(body))
	}

	// Each kline is [openTime, open, high, low, close, volume, ...] with
	// prices encoded as strings.
	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode klines: %w", err)
	}

	series := make(types.PriceSeries, 0, len(raw))
	for _, k := range raw {
		if len(k) < 5 {
			return nil, &types.DataError{Symbol: symbol, Reason: "malformed kline row"}
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			return nil, &types.DataError{Symbol: symbol, Reason: "malformed kline timestamp"}
		}
		var closeStr string
		if err := json.Unmarshal(k[4], &closeStr); err != nil {
			return nil, &types.DataError{Symbol: symbol, Reason: "malformed kline close"}
		}
		closePx, err := strconv.ParseFloat(closeStr, 64)
		if err != nil || closePx <= 0 {
			return nil, &types.DataError{Symbol: symbol, Reason: "malformed kline close"}
		}
		series = append(series, types.Bar{
			Timestamp: time.UnixMilli(openTime).UTC(),
			Close:     closePx,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	p.logger.Debug("loaded live price series",
		zap.String("symbol", symbol),
		zap.Int("bars", len(series)),
	)
	return series, nil
}
