package api_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trendlab/backtester/internal/api"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

type fakeProvider struct {
	series types.PriceSeries
	err    error
}

func (f *fakeProvider) Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func testConfig() *types.Config {
	return &types.Config{
		Strategy: types.StrategyConfig{
			MACD:          types.MACDConfig{FastPeriod: 2, SlowPeriod: 4, SignalPeriod: 3},
			Normalization: types.NormalizeConfig{Window: 5},
			Thresholds:    types.ThresholdConfig{Buy: -0.6, Sell: 0.6},
			Backtest: types.BacktestConfig{
				Symbol:         "BTCUSDT",
				StartDate:      "2024-01-01",
				EndDate:        "2024-02-29",
				InitialCapital: 10000,
			},
			WalkForward: types.WalkForwardConfig{
				TrainDays:             10,
				TestDays:              5,
				WarmupDays:            3,
				OverrideBuyThreshold:  -0.5,
				OverrideSellThreshold: 0.5,
				OverrideNormWindow:    4,
			},
		},
		Server: types.ServerConfig{WebSocketPath: "/ws"},
	}
}

func testSeries(n int) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.PriceSeries, n)
	for i := range series {
		series[i] = types.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Close:     100 + 10*math.Sin(float64(i)*0.7),
		}
	}
	return series
}

func newTestServer(provider *fakeProvider) *api.Server {
	return api.NewServer(zap.NewNop(), testConfig(), provider)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeProvider{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field %v, want healthy", body["status"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(&fakeProvider{series: testSeries(5)})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/data/history/BTCUSDT?start=2024-01-01&end=2024-01-05", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body)
	}
	var series types.PriceSeries
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series) != 5 {
		t.Errorf("got %d bars, want 5", len(series))
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/data/history/BTCUSDT?start=bogus&end=2024-01-05", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", rec.Code)
	}
}

func TestBacktestRunAndFetch(t *testing.T) {
	srv := newTestServer(&fakeProvider{series: testSeries(20)})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/backtest/run", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("run status %d, want 200: %s", rec.Code, rec.Body)
	}

	var run struct {
		ID      string                   `json:"id"`
		Symbol  string                   `json:"symbol"`
		Metrics types.PerformanceMetrics `json:"metrics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run response missing id")
	}
	if run.Symbol != "BTCUSDT" {
		t.Errorf("symbol %q, want BTCUSDT", run.Symbol)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/backtest/"+run.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status %d, want 200", rec.Code)
	}
	var result types.BacktestResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ID != run.ID {
		t.Errorf("fetched id %q, want %q", result.ID, run.ID)
	}
	if len(result.Rows) != 20 {
		t.Errorf("got %d rows, want 20", len(result.Rows))
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/backtest/unknown-id", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", rec.Code)
	}
}

func TestBacktestRunAppliesOverrides(t *testing.T) {
	srv := newTestServer(&fakeProvider{series: testSeries(20)})

	body := strings.NewReader(`{"symbol":"ETHUSDT","start":"2024-01-01","end":"2024-01-20"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/backtest/run", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body)
	}
	var run struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if run.Symbol != "ETHUSDT" {
		t.Errorf("symbol %q, want override ETHUSDT", run.Symbol)
	}
}

func TestBacktestRunErrorMapping(t *testing.T) {
	// Data errors surface as 404.
	srv := newTestServer(&fakeProvider{err: &types.DataError{Symbol: "BTCUSDT", Reason: "no data"}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/backtest/run", strings.NewReader(`{}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("data error: status %d, want 404", rec.Code)
	}

	// Bad override dates surface as 400 before any data is loaded.
	srv = newTestServer(&fakeProvider{series: testSeries(20)})
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/backtest/run", strings.NewReader(`{"start":"bogus"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", rec.Code)
	}
}

func TestWalkForwardEndpoint(t *testing.T) {
	srv := newTestServer(&fakeProvider{series: testSeries(30)})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/walkforward/run", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body)
	}

	var summary types.WalkForwardSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.WindowCount != 3 {
		t.Errorf("got %d windows, want 3 for a 30-day series", summary.WindowCount)
	}
}
