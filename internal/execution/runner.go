package execution

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trendlab/backtester/internal/sizing"
	"github.com/trendlab/backtester/pkg/types"
)

// priceFeeder is implemented by brokers that take bar-by-bar price updates
// from the caller (paper and skeleton venues; live venues stream their
// own).
type priceFeeder interface {
	SetLastPrice(symbol string, price decimal.Decimal)
}

// RunWithBroker replays signal-annotated rows against a broker instead of
// the simulator's internal capital math. Orders that the venue rejects
// leave the position unchanged; an unsupported venue operation aborts the
// run with the venue's typed error.
//
// Returns the broker's final balance.
func RunWithBroker(broker Broker, symbol string, rows []types.Row, params types.SizingParams) (decimal.Decimal, error) {
	if len(rows) == 0 {
		return decimal.Zero, &types.DataError{Symbol: symbol, Reason: "no rows to execute"}
	}

	feeder, _ := broker.(priceFeeder)
	position := 0

	for _, row := range rows {
		if feeder != nil {
			feeder.SetLastPrice(symbol, decimal.NewFromFloat(row.Close))
		}

		switch {
		case row.Signal == types.SignalBuy && position == 0:
			qty := sizing.Size(row.Close, params)
			result, err := broker.PlaceOrder(types.OrderRequest{
				Symbol:   symbol,
				Side:     types.OrderSideBuy,
				Quantity: decimal.NewFromInt(int64(qty)),
				Type:     types.OrderTypeMarket,
			})
			if err != nil {
				return decimal.Zero, fmt.Errorf("buy order failed: %w", err)
			}
			if result.Status == types.OrderStatusFilled {
				position = qty
			}

		case row.Signal == types.SignalSell && position > 0:
			result, err := broker.PlaceOrder(types.OrderRequest{
				Symbol:   symbol,
				Side:     types.OrderSideSell,
				Quantity: decimal.NewFromInt(int64(position)),
				Type:     types.OrderTypeMarket,
			})
			if err != nil {
				return decimal.Zero, fmt.Errorf("sell order failed: %w", err)
			}
			if result.Status == types.OrderStatusFilled {
				position = 0
			}
		}
	}

	return broker.GetBalance()
}
