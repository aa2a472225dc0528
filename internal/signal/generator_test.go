package signal_test

import (
	"errors"
	"testing"

	"github.com/trendlab/backtester/internal/signal"
	"github.com/trendlab/backtester/pkg/types"
)

func TestFlagThresholds(t *testing.T) {
	thresholds := types.ThresholdConfig{Buy: -0.6, Sell: 0.6}

	cases := []struct {
		normalized float64
		want       types.SignalFlag
	}{
		{-1.0, types.SignalBuy},
		{-0.6, types.SignalBuy}, // boundary is inclusive
		{-0.59, types.SignalHold},
		{0.0, types.SignalHold},
		{0.59, types.SignalHold},
		{0.6, types.SignalSell}, // boundary is inclusive
		{1.0, types.SignalSell},
	}
	for _, tc := range cases {
		if got := signal.Flag(tc.normalized, thresholds); got != tc.want {
			t.Errorf("Flag(%v) = %s, want %s", tc.normalized, got, tc.want)
		}
	}
}

func TestFlagSellWinsWhenBothConditionsHold(t *testing.T) {
	// With overlapping thresholds both conditions can hold at once; the
	// sell check runs second and must win.
	thresholds := types.ThresholdConfig{Buy: 0.5, Sell: 0.3}
	if got := signal.Flag(0.4, thresholds); got != types.SignalSell {
		t.Errorf("Flag(0.4) = %s, want SELL to override BUY", got)
	}
}

func TestAnnotateFillsSignalColumn(t *testing.T) {
	rows := []types.Row{
		{Normalized: -0.9},
		{Normalized: 0.0},
		{Normalized: 0.9},
	}
	out, err := signal.Annotate(rows, types.ThresholdConfig{Buy: -0.6, Sell: 0.6})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	want := []types.SignalFlag{types.SignalBuy, types.SignalHold, types.SignalSell}
	for i, row := range out {
		if row.Signal != want[i] {
			t.Errorf("row %d: %s, want %s", i, row.Signal, want[i])
		}
	}

	// Input rows must stay untouched.
	for i, row := range rows {
		if row.Signal != "" {
			t.Errorf("input row %d mutated: %s", i, row.Signal)
		}
	}
}

func TestAnnotateRejectsInvertedThresholds(t *testing.T) {
	var cfgErr *types.ConfigError
	_, err := signal.Annotate(nil, types.ThresholdConfig{Buy: 0.6, Sell: -0.6})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigError", err)
	}

	_, err = signal.Annotate(nil, types.ThresholdConfig{Buy: 0.2, Sell: 0.2})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("equal thresholds: got %v, want ConfigError", err)
	}
}
