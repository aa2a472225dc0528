// Package backtester provides performance metrics calculation.
package backtester

import (
	"math"

	"github.com/trendlab/backtester/pkg/types"
)

const tradingDaysPerYear = 252.0

// Evaluate reduces a completed equity/position trajectory to summary
// statistics. It is a pure function: evaluating the same rows twice yields
// identical metrics. annualRiskFree is the annual risk-free rate used for
// Sharpe and Sortino (0 for none).
func Evaluate(rows []types.Row, annualRiskFree float64) (types.PerformanceMetrics, error) {
	if len(rows) == 0 {
		return types.PerformanceMetrics{}, &types.DataError{Reason: "no rows to evaluate"}
	}

	equity := make([]float64, len(rows))
	for i, row := range rows {
		equity[i] = row.Equity
	}

	var m types.PerformanceMetrics
	m.TotalReturn = equity[len(equity)-1]/equity[0] - 1.0
	m.MaxDrawdown = maxDrawdown(equity)
	m.NumTrades = roundTrips(rows)
	m.WinRate = stepWinRate(equity)

	returns := periodReturns(equity)
	dailyRF := annualRiskFree / tradingDaysPerYear
	m.Sharpe = sharpe(returns, dailyRF)
	m.Sortino = sortino(returns, dailyRF)

	return m, nil
}

// maxDrawdown is the most negative peak-relative decline, <= 0.
func maxDrawdown(equity []float64) float64 {
	peak := equity[0]
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak != 0 {
			if dd := (e - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// roundTrips infers completed trades from the position-size trajectory:
// the smaller of the strict increase and strict decrease counts. An open
// position at the end of the series is not counted.
func roundTrips(rows []types.Row) int {
	entries, exits := 0, 0
	for i := 1; i < len(rows); i++ {
		switch {
		case rows[i].Position > rows[i-1].Position:
			entries++
		case rows[i].Position < rows[i-1].Position:
			exits++
		}
	}
	if exits < entries {
		return exits
	}
	return entries
}

// stepWinRate is the fraction of consecutive-row pairs where equity rose,
// over all pairs where it moved. Flat pairs count for neither side. This is
// a per-step measure, not a per-trade win rate.
func stepWinRate(equity []float64) float64 {
	wins, losses := 0, 0
	for i := 1; i < len(equity); i++ {
		switch {
		case equity[i] > equity[i-1]:
			wins++
		case equity[i] < equity[i-1]:
			losses++
		}
	}
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses)
}

// periodReturns are the simple period-over-period equity returns, with the
// undefined first value dropped.
func periodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1.0)
	}
	return returns
}

func sharpe(returns []float64, dailyRF float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * (mean(returns) - dailyRF) / sd
}

// sortino penalizes only downside volatility: the denominator is the
// standard deviation of the strictly negative returns. An empty or
// zero-variance downside set yields 0, the defined degeneracy fallback.
func sortino(returns []float64, dailyRF float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	sd := stdDev(downside)
	if sd == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * (mean(returns) - dailyRF) / sd
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
