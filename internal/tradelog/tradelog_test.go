package tradelog_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trendlab/backtester/internal/tradelog"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteTradeLedger(t *testing.T) {
	dir := t.TempDir()
	w, err := tradelog.NewWriter(zap.NewNop(), dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	entry := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	trades := []types.TradeRecord{
		{EntryTime: entry, EntryPrice: 97, ExitTime: exit, ExitPrice: 100, Size: 1, PnL: 3},
	}

	if err := w.WriteTradeLedger(trades); err != nil {
		t.Fatalf("WriteTradeLedger failed: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "trade_log.csv"))
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1 trade", len(records))
	}
	if records[0][0] != "entry_time" {
		t.Errorf("header %v, want entry_time first", records[0])
	}
	row := records[1]
	if row[1] != "97" || row[3] != "100" || row[4] != "1" || row[5] != "3" {
		t.Errorf("unexpected ledger row: %v", row)
	}
}

func TestAppendSummaryRowWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := tradelog.NewWriter(zap.NewNop(), dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	m := types.PerformanceMetrics{TotalReturn: 0.0003, NumTrades: 1, WinRate: 1}
	if err := w.AppendSummaryRow("BTCUSDT", m); err != nil {
		t.Fatalf("AppendSummaryRow failed: %v", err)
	}
	if err := w.AppendSummaryRow("BTCUSDT", m); err != nil {
		t.Fatalf("AppendSummaryRow failed: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "backtest_summary.csv"))
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2 summaries", len(records))
	}
	if records[0][0] != "timestamp" {
		t.Errorf("header %v, want timestamp first", records[0])
	}
	if records[1][1] != "BTCUSDT" || records[2][1] != "BTCUSDT" {
		t.Errorf("symbol column wrong: %v / %v", records[1], records[2])
	}
}

func TestWriteWindowResults(t *testing.T) {
	dir := t.TempDir()
	w, err := tradelog.NewWriter(zap.NewNop(), dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := &types.WalkForwardSummary{
		WindowCount: 1,
		Windows: []types.WindowResult{
			{
				TrainStart: start,
				TrainEnd:   start.AddDate(0, 0, 10),
				TestStart:  start.AddDate(0, 0, 10),
				TestEnd:    start.AddDate(0, 0, 15),
				ReturnPct:  1.5,
				Trades:     2,
			},
		},
	}

	if err := w.WriteWindowResults(summary); err != nil {
		t.Fatalf("WriteWindowResults failed: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "walk_forward_results.csv"))
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1 window", len(records))
	}
	row := records[1]
	if row[0] != "2024-01-01" || row[3] != "2024-01-16" {
		t.Errorf("unexpected window dates: %v", row)
	}
	if row[4] != "1.5" || row[6] != "2" {
		t.Errorf("unexpected window values: %v", row)
	}
}
