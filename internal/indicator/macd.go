// Package indicator computes the dual-EMA oscillator and its bounded
// normalization. Every stage is a pure transformation returning a fresh row
// slice; nothing here holds state across calls.
package indicator

import (
	"github.com/trendlab/backtester/pkg/types"
)

// EMA computes an exponential moving average with smoothing factor
// k = 2/(period+1). The first output equals the first input.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = k*values[i] + (1.0-k)*out[i-1]
	}
	return out
}

// Compute annotates a price series with the fast/slow EMAs, the oscillator
// (emaFast - emaSlow), its signal line and the bounded normalization.
// The returned rows carry one entry per input bar, in input order.
func Compute(series types.PriceSeries, macd types.MACDConfig, normWindow int) ([]types.Row, error) {
	if len(series) == 0 {
		return nil, &types.DataError{Reason: "empty series"}
	}
	if macd.FastPeriod <= 0 || macd.SlowPeriod <= 0 || macd.SignalPeriod <= 0 {
		return nil, &types.ConfigError{Field: "macd", Reason: "periods must be positive"}
	}
	if normWindow <= 0 {
		return nil, &types.ConfigError{Field: "normalization.window", Reason: "must be positive"}
	}

	closes := make([]float64, len(series))
	for i, bar := range series {
		closes[i] = bar.Close
	}

	emaFast := EMA(closes, macd.FastPeriod)
	emaSlow := EMA(closes, macd.SlowPeriod)

	osc := make([]float64, len(series))
	for i := range osc {
		osc[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := EMA(osc, macd.SignalPeriod)
	normalized := Normalize(osc, normWindow)

	rows := make([]types.Row, len(series))
	for i, bar := range series {
		rows[i] = types.Row{
			Timestamp:  bar.Timestamp,
			Close:      bar.Close,
			EMAFast:    emaFast[i],
			EMASlow:    emaSlow[i],
			Oscillator: osc[i],
			SignalLine: signalLine[i],
			Normalized: normalized[i],
			Signal:     types.SignalHold,
		}
	}
	return rows, nil
}
