// Package sizing converts account risk parameters into a trade size.
package sizing

import "github.com/trendlab/backtester/pkg/types"

// Size returns the number of units to trade at the given price. It is a
// pure function of its inputs: the caller supplies the balance, the sizer
// never reads simulator capital.
//
// Disabled sizing and degenerate stop distances both fall back to a fixed
// size of 1.
func Size(price float64, params types.SizingParams) int {
	if !params.Enabled {
		return 1
	}

	riskAmount := params.AccountBalance * params.RiskPerTrade
	stopDistance := price * params.StopLossPct
	if stopDistance <= 0 {
		return 1
	}

	size := int(riskAmount / stopDistance)
	if size < 1 {
		return 1
	}
	return size
}
