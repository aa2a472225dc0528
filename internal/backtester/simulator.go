// Package backtester turns an annotated price series into capital,
// position and equity trajectories and reduces them to performance
// statistics.
package backtester

import (
	"github.com/trendlab/backtester/internal/sizing"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Simulator executes a long-only, single-position backtest over annotated
// rows. Each invocation owns its capital and position state exclusively;
// nothing is shared across runs.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a simulator. The logger is the injected event sink
// for per-row diagnostics; the simulator performs no other I/O.
func NewSimulator(logger *zap.Logger) *Simulator {
	return &Simulator{logger: logger}
}

// Run walks the rows once in order, applying the FLAT/LONG state machine:
//
//   - FLAT + BUY: size the trade, pay price*(1+slippage) per unit plus
//     commission. A cost above available capital rejects the entry; that is
//     a skipped transition, not an error.
//   - LONG + SELL: receive price*(1-slippage) per unit minus commission,
//     emit a TradeRecord, go flat.
//
// Every row, transition or not, gets a mark-to-market equity value from the
// post-transition capital and position. The returned rows are a new slice;
// the input is not mutated.
func (s *Simulator) Run(rows []types.Row, cfg types.StrategyConfig) ([]types.Row, []types.TradeRecord, error) {
	if len(rows) == 0 {
		return nil, nil, &types.DataError{Reason: "no rows to simulate"}
	}
	if cfg.Backtest.InitialCapital <= 0 {
		return nil, nil, &types.ConfigError{Field: "backtest.initial_capital", Reason: "must be positive"}
	}

	capital := cfg.Backtest.InitialCapital
	commission := cfg.CommissionPerTrade
	slippage := cfg.SlippagePct

	out := make([]types.Row, len(rows))
	copy(out, rows)

	var trades []types.TradeRecord
	position := 0
	var entryPrice float64
	var entryRow *types.Row

	for i := range out {
		row := &out[i]
		price := row.Close

		switch {
		case row.Signal == types.SignalBuy && position == 0:
			size := sizing.Size(price, cfg.Sizing)
			effective := price * (1.0 + slippage)
			cost := float64(size)*effective + commission
			if cost <= capital {
				capital -= cost
				position = size
				entryPrice = effective
				entryRow = row
			} else {
				s.logger.Debug("buy rejected, insufficient capital",
					zap.Time("timestamp", row.Timestamp),
					zap.Float64("cost", cost),
					zap.Float64("capital", capital),
				)
			}

		case row.Signal == types.SignalSell && position > 0:
			effective := price * (1.0 - slippage)
			capital += float64(position)*effective - commission
			trades = append(trades, types.TradeRecord{
				EntryTime:  entryRow.Timestamp,
				EntryPrice: entryPrice,
				ExitTime:   row.Timestamp,
				ExitPrice:  effective,
				Size:       position,
				PnL:        (effective-entryPrice)*float64(position) - 2.0*commission,
			})
			position = 0
			entryPrice = 0
			entryRow = nil
		}

		row.Position = position
		row.Equity = capital + float64(position)*price
	}

	return out, trades, nil
}
