// Package types provides shared type definitions for the backtester.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalFlag is the discrete trading decision for a single row.
type SignalFlag string

const (
	SignalBuy  SignalFlag = "BUY"
	SignalSell SignalFlag = "SELL"
	SignalHold SignalFlag = "HOLD"
)

// Bar is a single point of an ordered price series.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// PriceSeries is an ordered sequence of bars. Timestamps are strictly
// increasing and closes are positive; the series is consumed exactly as
// ordered, no gap filling.
type PriceSeries []Bar

// Row is one fully annotated row of the pipeline output. Each stage fills
// in its own columns and leaves the rest untouched.
type Row struct {
	Timestamp  time.Time  `json:"timestamp"`
	Close      float64    `json:"close"`
	EMAFast    float64    `json:"emaFast"`
	EMASlow    float64    `json:"emaSlow"`
	Oscillator float64    `json:"oscillator"`
	SignalLine float64    `json:"signalLine"`
	Normalized float64    `json:"normalizedOscillator"`
	Signal     SignalFlag `json:"signalFlag"`
	Position   int        `json:"positionSize"`
	Equity     float64    `json:"equity"`
}

// TradeRecord is one completed round trip. Prices are slippage-adjusted.
// Immutable once emitted by the simulator.
type TradeRecord struct {
	EntryTime  time.Time `json:"entryTime"`
	EntryPrice float64   `json:"entryPrice"`
	ExitTime   time.Time `json:"exitTime"`
	ExitPrice  float64   `json:"exitPrice"`
	Size       int       `json:"size"`
	PnL        float64   `json:"pnl"`
}

// PerformanceMetrics are the summary statistics of a single run. All values
// are ratios, not percentages; formatting is a caller concern.
type PerformanceMetrics struct {
	TotalReturn float64 `json:"totalReturn"`
	MaxDrawdown float64 `json:"maxDrawdown"` // <= 0
	NumTrades   int     `json:"numTrades"`
	// WinRate is the fraction of steps where equity rose, over all steps
	// where it moved. Per-step, not per-trade.
	WinRate float64 `json:"winRate"`
	Sharpe  float64 `json:"sharpe"`
	Sortino float64 `json:"sortino"`
}

// BacktestResult bundles everything a single run produces.
type BacktestResult struct {
	ID          string             `json:"id"`
	Symbol      string             `json:"symbol"`
	Rows        []Row              `json:"rows"`
	Trades      []TradeRecord      `json:"trades"`
	Metrics     PerformanceMetrics `json:"metrics"`
	StartedAt   time.Time          `json:"startedAt"`
	CompletedAt time.Time          `json:"completedAt"`
}

// WindowResult is the outcome of one walk-forward window. Return, drawdown
// and win-rate fields are percentages here because the aggregate is a
// reporting surface.
type WindowResult struct {
	TrainStart time.Time `json:"trainStart"`
	TrainEnd   time.Time `json:"trainEnd"`
	TestStart  time.Time `json:"testStart"`
	TestEnd    time.Time `json:"testEnd"`
	ReturnPct  float64   `json:"returnPct"`
	MaxDdPct   float64   `json:"maxDdPct"`
	Trades     int       `json:"trades"`
	WinRatePct float64   `json:"winRatePct"`
	Sharpe     float64   `json:"sharpe"`
	Sortino    float64   `json:"sortino"`
}

// WalkForwardSummary aggregates all evaluated windows. Windows may be empty
// when the series loaded fine but was too short to form one window; that is
// normal termination, not an error.
type WalkForwardSummary struct {
	Windows      []WindowResult `json:"windows"`
	WindowCount  int            `json:"windowCount"`
	AvgReturnPct float64        `json:"avgReturnPct"`
	WorstReturn  float64        `json:"worstReturnPct"`
	AvgMaxDdPct  float64        `json:"avgMaxDdPct"`
	AvgSharpe    float64        `json:"avgSharpe"`
	AvgSortino   float64        `json:"avgSortino"`
}

// OrderSide represents buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType represents the type of order.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderStatus represents the status of an order at a venue.
type OrderStatus string

const (
	OrderStatusAccepted OrderStatus = "ACCEPTED"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusRejected OrderStatus = "REJECTED"
)

// OrderRequest is a broker-agnostic order.
type OrderRequest struct {
	Symbol     string          `json:"symbol"`
	Side       OrderSide       `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Type       OrderType       `json:"type"`
	LimitPrice decimal.Decimal `json:"limitPrice,omitempty"`
}

// OrderResult is the venue's answer to an OrderRequest.
type OrderResult struct {
	OrderID   string          `json:"orderId"`
	Status    OrderStatus     `json:"status"`
	FilledQty decimal.Decimal `json:"filledQty"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	Reason    string          `json:"reason,omitempty"`
}
