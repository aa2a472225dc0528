// Package tradelog persists trade ledgers and run summary rows as CSV.
// The orchestrator calls it once after a run, gated by the log_trades
// flag; the core pipeline never writes files itself, and a failed write is
// logged, not fatal to the run.
package tradelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Writer writes ledgers and summaries under a base directory.
type Writer struct {
	logger *zap.Logger
	dir    string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(logger *zap.Logger, dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &Writer{logger: logger, dir: dir}, nil
}

// WriteTradeLedger writes the full ledger of a run to trade_log.csv,
// replacing any previous file.
func (w *Writer) WriteTradeLedger(trades []types.TradeRecord) error {
	path := filepath.Join(w.dir, "trade_log.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"entry_time", "entry_price", "exit_time", "exit_price", "size", "pnl"}); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, t := range trades {
		rec := []string{
			t.EntryTime.UTC().Format(time.RFC3339),
			formatFloat(t.EntryPrice),
			t.ExitTime.UTC().Format(time.RFC3339),
			formatFloat(t.ExitPrice),
			strconv.Itoa(t.Size),
			formatFloat(t.PnL),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}

	w.logger.Info("trade ledger saved",
		zap.String("path", path),
		zap.Int("trades", len(trades)),
	)
	return nil
}

// AppendSummaryRow appends one consolidated row per run to
// backtest_summary.csv, writing the header on first use.
func (w *Writer) AppendSummaryRow(symbol string, m types.PerformanceMetrics) error {
	path := filepath.Join(w.dir, "backtest_summary.csv")

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if writeHeader {
		header := []string{"timestamp", "symbol", "total_return", "max_drawdown", "num_trades", "win_rate", "sharpe", "sortino"}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write summary header: %w", err)
		}
	}
	rec := []string{
		time.Now().UTC().Format(time.RFC3339),
		symbol,
		formatFloat(m.TotalReturn),
		formatFloat(m.MaxDrawdown),
		strconv.Itoa(m.NumTrades),
		formatFloat(m.WinRate),
		formatFloat(m.Sharpe),
		formatFloat(m.Sortino),
	}
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteWindowResults writes the per-window walk-forward rows to
// walk_forward_results.csv.
func (w *Writer) WriteWindowResults(summary *types.WalkForwardSummary) error {
	path := filepath.Join(w.dir, "walk_forward_results.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"train_start", "train_end", "test_start", "test_end", "return_pct", "max_dd_pct", "trades", "win_rate_pct", "sharpe", "sortino"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write walk-forward header: %w", err)
	}
	for _, win := range summary.Windows {
		rec := []string{
			win.TrainStart.UTC().Format("2006-01-02"),
			win.TrainEnd.UTC().Format("2006-01-02"),
			win.TestStart.UTC().Format("2006-01-02"),
			win.TestEnd.UTC().Format("2006-01-02"),
			formatFloat(win.ReturnPct),
			formatFloat(win.MaxDdPct),
			strconv.Itoa(win.Trades),
			formatFloat(win.WinRatePct),
			formatFloat(win.Sharpe),
			formatFloat(win.Sortino),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write walk-forward row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush walk-forward results: %w", err)
	}

	w.logger.Info("walk-forward results saved",
		zap.String("path", path),
		zap.Int("windows", summary.WindowCount),
	)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
