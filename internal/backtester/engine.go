package backtester

import (
	"time"

	"github.com/google/uuid"
	"github.com/trendlab/backtester/internal/indicator"
	"github.com/trendlab/backtester/internal/signal"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Engine drives the full pipeline for one series: indicators, signals,
// simulation, evaluation. It holds no run state of its own.
type Engine struct {
	logger *zap.Logger
	sim    *Simulator
}

// NewEngine creates an engine with the given injected logger.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger,
		sim:    NewSimulator(logger),
	}
}

// Annotate runs the indicator, signal and simulation stages and returns the
// fully annotated rows plus the trade ledger. Used directly by the
// walk-forward validator, which evaluates metrics on a trimmed slice.
func (e *Engine) Annotate(series types.PriceSeries, strat types.StrategyConfig) ([]types.Row, []types.TradeRecord, error) {
	rows, err := indicator.Compute(series, strat.MACD, strat.Normalization.Window)
	if err != nil {
		return nil, nil, err
	}
	rows, err = signal.Annotate(rows, strat.Thresholds)
	if err != nil {
		return nil, nil, err
	}
	return e.sim.Run(rows, strat)
}

// Run executes the pipeline over the whole series and evaluates metrics on
// the result.
func (e *Engine) Run(series types.PriceSeries, strat types.StrategyConfig) (*types.BacktestResult, error) {
	started := time.Now()

	rows, trades, err := e.Annotate(series, strat)
	if err != nil {
		return nil, err
	}
	metrics, err := Evaluate(rows, 0)
	if err != nil {
		return nil, err
	}

	result := &types.BacktestResult{
		ID:          uuid.New().String(),
		Symbol:      strat.Backtest.Symbol,
		Rows:        rows,
		Trades:      trades,
		Metrics:     metrics,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}

	e.logger.Info("backtest completed",
		zap.String("id", result.ID),
		zap.String("symbol", result.Symbol),
		zap.Int("rows", len(rows)),
		zap.Int("trades", len(trades)),
		zap.Float64("totalReturn", metrics.TotalReturn),
	)

	return result, nil
}
