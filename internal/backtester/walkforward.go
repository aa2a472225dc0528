// Package backtester provides walk-forward validation over rolling
// train/test windows.
package backtester

import (
	"time"

	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// WalkForwardValidator repeatedly re-runs the full pipeline over
// non-overlapping future slices of a long price history. Windows are
// mutually independent: each gets its own slice, its own forced parameter
// overrides and a freshly reset capital. Emission order follows ascending
// cursor position.
type WalkForwardValidator struct {
	logger *zap.Logger
	engine *Engine
}

// NewWalkForwardValidator creates a validator.
func NewWalkForwardValidator(logger *zap.Logger) *WalkForwardValidator {
	return &WalkForwardValidator{
		logger: logger,
		engine: NewEngine(logger),
	}
}

// Run executes walk-forward validation over the full series.
//
// The cursor starts at index 0 of the date axis. Each iteration derives
// trainStart from the cursor row, extends trainDays/testDays in calendar
// days, prepends warmupDays of data so the indicators stabilize, runs the
// pipeline on the warm-up+test slice, then trims the warm-up portion before
// evaluating. The cursor then advances by testDays index positions, not
// calendar days, so window spacing is coupled to data density.
//
// Reaching the end of the data is normal termination. A series too short to
// form even one window yields an empty summary, which is distinct from the
// no-data error.
func (wf *WalkForwardValidator) Run(series types.PriceSeries, cfg types.Config) (*types.WalkForwardSummary, error) {
	strat := cfg.Strategy
	wfCfg := strat.WalkForward

	if len(series) == 0 {
		return nil, &types.DataError{Symbol: strat.Backtest.Symbol, Reason: "no price data available"}
	}
	if wfCfg.TrainDays <= 0 || wfCfg.TestDays <= 0 || wfCfg.WarmupDays <= 0 {
		return nil, &types.ConfigError{Field: "walk_forward", Reason: "train_days, test_days and warmup_days must be positive"}
	}

	lastDate := series[len(series)-1].Timestamp

	wf.logger.Info("starting walk-forward validation",
		zap.String("symbol", strat.Backtest.Symbol),
		zap.Time("firstDate", series[0].Timestamp),
		zap.Time("lastDate", lastDate),
		zap.Int("trainDays", wfCfg.TrainDays),
		zap.Int("testDays", wfCfg.TestDays),
		zap.Int("warmupDays", wfCfg.WarmupDays),
	)

	var windows []types.WindowResult

	for cursor := 0; cursor < len(series); cursor += wfCfg.TestDays {
		trainStart := series[cursor].Timestamp
		trainEnd := trainStart.Add(days(wfCfg.TrainDays))
		testStart := trainEnd
		testEnd := testStart.Add(days(wfCfg.TestDays))

		if testEnd.After(lastDate) {
			break
		}

		warmupStart := testStart.Add(-days(wfCfg.WarmupDays))
		slice := sliceByDate(series, warmupStart, testEnd)

		windowStrat := wf.overrideParams(strat)
		rows, _, err := wf.engine.Annotate(slice, windowStrat)
		if err != nil {
			return nil, err
		}

		trimmed := trimByDate(rows, testStart, testEnd)
		metrics, err := Evaluate(trimmed, 0)
		if err != nil {
			return nil, err
		}

		windows = append(windows, types.WindowResult{
			TrainStart: trainStart,
			TrainEnd:   trainEnd,
			TestStart:  testStart,
			TestEnd:    testEnd,
			ReturnPct:  metrics.TotalReturn * 100.0,
			MaxDdPct:   metrics.MaxDrawdown * 100.0,
			Trades:     metrics.NumTrades,
			WinRatePct: metrics.WinRate * 100.0,
			Sharpe:     metrics.Sharpe,
			Sortino:    metrics.Sortino,
		})

		wf.logger.Debug("window evaluated",
			zap.Time("testStart", testStart),
			zap.Time("testEnd", testEnd),
			zap.Float64("returnPct", metrics.TotalReturn*100.0),
			zap.Int("trades", metrics.NumTrades),
		)
	}

	summary := aggregate(windows)
	wf.logger.Info("walk-forward validation complete",
		zap.Int("windows", summary.WindowCount),
		zap.Float64("avgReturnPct", summary.AvgReturnPct),
		zap.Float64("avgSharpe", summary.AvgSharpe),
	)
	return summary, nil
}

// overrideParams forces the walk-forward-safe parameters on a copy of the
// strategy config: uniform thresholds and normalization window across all
// windows, account balance reset to the initial capital, and trade logging
// off during sweeps.
func (wf *WalkForwardValidator) overrideParams(strat types.StrategyConfig) types.StrategyConfig {
	out := strat
	out.Thresholds.Buy = strat.WalkForward.OverrideBuyThreshold
	out.Thresholds.Sell = strat.WalkForward.OverrideSellThreshold
	out.Normalization.Window = strat.WalkForward.OverrideNormWindow
	out.Sizing.AccountBalance = strat.Backtest.InitialCapital
	out.LogTrades = false
	return out
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// sliceByDate returns the bars with timestamp in [start, end).
func sliceByDate(series types.PriceSeries, start, end time.Time) types.PriceSeries {
	var out types.PriceSeries
	for _, bar := range series {
		if !bar.Timestamp.Before(start) && bar.Timestamp.Before(end) {
			out = append(out, bar)
		}
	}
	return out
}

// trimByDate returns the rows with timestamp in [start, end), discarding
// the warm-up portion so the indicator startup transient never contaminates
// the evaluated window.
func trimByDate(rows []types.Row, start, end time.Time) []types.Row {
	var out []types.Row
	for _, row := range rows {
		if !row.Timestamp.Before(start) && row.Timestamp.Before(end) {
			out = append(out, row)
		}
	}
	return out
}

func aggregate(windows []types.WindowResult) *types.WalkForwardSummary {
	summary := &types.WalkForwardSummary{
		Windows:     windows,
		WindowCount: len(windows),
	}
	if len(windows) == 0 {
		return summary
	}

	worst := windows[0].ReturnPct
	var sumReturn, sumDd, sumSharpe, sumSortino float64
	for _, w := range windows {
		sumReturn += w.ReturnPct
		sumDd += w.MaxDdPct
		sumSharpe += w.Sharpe
		sumSortino += w.Sortino
		if w.ReturnPct < worst {
			worst = w.ReturnPct
		}
	}
	n := float64(len(windows))
	summary.AvgReturnPct = sumReturn / n
	summary.WorstReturn = worst
	summary.AvgMaxDdPct = sumDd / n
	summary.AvgSharpe = sumSharpe / n
	summary.AvgSortino = sumSortino / n
	return summary
}
