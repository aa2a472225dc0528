// Package signal maps normalized oscillator values to discrete
// BUY/SELL/HOLD flags.
package signal

import (
	"github.com/trendlab/backtester/pkg/types"
)

// Flag evaluates a single normalized value against the thresholds. The SELL
// check runs after the BUY check and overrides it when both hold; with
// buy < sell the two are normally mutually exclusive, but the precedence is
// part of the contract.
func Flag(normalized float64, thresholds types.ThresholdConfig) types.SignalFlag {
	flag := types.SignalHold
	if normalized <= thresholds.Buy {
		flag = types.SignalBuy
	}
	if normalized >= thresholds.Sell {
		flag = types.SignalSell
	}
	return flag
}

// Annotate returns a new row slice with the signal column filled in from
// each row's normalized oscillator. The thresholds must already be
// validated (buy strictly below sell).
func Annotate(rows []types.Row, thresholds types.ThresholdConfig) ([]types.Row, error) {
	if thresholds.Buy >= thresholds.Sell {
		return nil, &types.ConfigError{
			Field:  "thresholds",
			Reason: "normalized_buy must be strictly below normalized_sell",
		}
	}
	out := make([]types.Row, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Signal = Flag(out[i].Normalized, thresholds)
	}
	return out, nil
}
