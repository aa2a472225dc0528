// Package main runs rolling walk-forward validation and writes the
// per-window results CSV plus an aggregate summary.
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
	logDir := flag.String("log-dir", "logs", "Directory for result CSVs")
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

	bt := cfg.Strategy.Backtest
	start, err := time.Parse("2006-01-02", bt.StartDate)
	if err != nil {
		logger.Fatal("bad start_date", zap.String("value", bt.StartDate), zap.Error(err))
	}
	end, err := time.Parse("2006-01-02", bt.EndDate)
	if err != nil {
		logger.Fatal("bad end_date", zap.String("value", bt.EndDate), zap.Error(err))
	}

	provider := data.NewFallbackProvider(logger,
		data.NewHTTPProvider(logger, cfg.Data),
		data.NewStore(logger, cfg.Data.DataDir),
	)

	series, err := provider.Load(context.Background(), bt.Symbol, start, end)
	if err != nil {
		logger.Fatal("failed to load price data", zap.Error(err))
	}

	validator := backtester.NewWalkForwardValidator(logger)
	summary, err := validator.Run(series, *cfg)
	if err != nil {
		logger.Fatal("walk-forward validation failed", zap.Error(err))
	}

	printSummary(summary)

	if summary.WindowCount > 0 {
		writer, err := tradelog.NewWriter(logger, *logDir)
		if err != nil {
			logger.Warn("result logging disabled", zap.Error(err))
			return
		}
		if err := writer.WriteWindowResults(summary); err != nil {
			logger.Warn("failed to write walk-forward results", zap.Error(err))
		}
	}
}

func printSummary(summary *types.WalkForwardSummary) {
	fmt.Println("\nWalk-Forward Summary")
	fmt.Println("--------------------")
	if summary.WindowCount == 0 {
		fmt.Println("No walk-forward windows were evaluated.")
		return
	}
	fmt.Printf("Windows tested : %d\n", summary.WindowCount)
	fmt.Printf("Avg Return     : %.2f%%\n", summary.AvgReturnPct)
	fmt.Printf("Worst Return   : %.2f%%\n", summary.WorstReturn)
	fmt.Printf("Avg Max DD     : %.2f%%\n", summary.AvgMaxDdPct)
	fmt.Printf("Avg Sharpe     : %.2f\n", summary.AvgSharpe)
	fmt.Printf("Avg Sortino    : %.2f\n", summary.AvgSortino)
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
