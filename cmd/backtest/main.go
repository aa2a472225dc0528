// Package main runs a single backtest over the configured price history:
// config, data with fallback, pipeline, metrics, optional ledger/summary
// persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/trendlab/backtester/internal/backtester"
	"github.com/trendlab/backtester/internal/config"
	"github.com/trendlab/backtester/internal/data"
	"github.com/trendlab/backtester/internal/tradelog"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "configs/example.yaml", "Path to YAML configuration")
	symbol := flag.String("symbol", "", "Override configured symbol")
	logDir := flag.String("log-dir", "logs", "Directory for trade ledger and summary CSVs")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := setupLogger(*logLevel)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if *symbol != "" {
		cfg.Strategy.Backtest.Symbol = *symbol
	}

	start, end, err := parseRange(cfg.Strategy.Backtest)
	if err != nil {
		logger.Fatal("invalid date range", zap.Error(err))
	}

	provider := data.NewFallbackProvider(logger,
		data.NewHTTPProvider(logger, cfg.Data),
		data.NewStore(logger, cfg.Data.DataDir),
	)

	ctx := context.Background()
	series, err := provider.Load(ctx, cfg.Strategy.Backtest.Symbol, start, end)
	if err != nil {
		logger.Fatal("failed to load price data", zap.Error(err))
	}

	engine := backtester.NewEngine(logger)
	result, err := engine.Run(series, cfg.Strategy)
	if err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}

	printSummary(result)

	if cfg.Strategy.LogTrades {
		writer, err := tradelog.NewWriter(logger, *logDir)
		if err != nil {
			logger.Warn("trade logging disabled", zap.Error(err))
			return
		}
		if err := writer.WriteTradeLedger(result.Trades); err != nil {
			logger.Warn("failed to write trade ledger", zap.Error(err))
		}
		if err := writer.AppendSummaryRow(result.Symbol, result.Metrics); err != nil {
			logger.Warn("failed to append summary row", zap.Error(err))
		}
	}
}

func printSummary(result *types.BacktestResult) {
	m := result.Metrics
	fmt.Printf("\nBacktest %s (%s)\n", result.ID, result.Symbol)
	fmt.Println("------------------------------------")
	fmt.Printf("Rows          : %d\n", len(result.Rows))
	fmt.Printf("Trades        : %d\n", len(result.Trades))
	fmt.Printf("Total Return  : %.2f%%\n", m.TotalReturn*100)
	fmt.Printf("Max Drawdown  : %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Win Rate      : %.2f%%\n", m.WinRate*100)
	fmt.Printf("Sharpe        : %.2f\n", m.Sharpe)
	fmt.Printf("Sortino       : %.2f\n", m.Sortino)
}

func parseRange(bt types.BacktestConfig) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", bt.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start_date %q: %w", bt.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", bt.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end_date %q: %w", bt.EndDate, err)
	}
	return start, end, nil
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
