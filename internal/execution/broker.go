// Package execution defines the broker capability interface and its
// adapters. The paper broker is fully functional; real venue adapters that
// are not yet wired up return typed unsupported results instead of failing
// deep inside a workflow.
package execution

import (
	"github.com/shopspring/decimal"
	"github.com/trendlab/backtester/pkg/types"
)

// Broker is the unified venue interface used by the live/paper execution
// path that substitutes for the simulator's internal capital math.
type Broker interface {
	GetLastPrice(symbol string) (decimal.Decimal, error)
	PlaceOrder(req types.OrderRequest) (types.OrderResult, error)
	GetBalance() (decimal.Decimal, error)
}
