package execution

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// PaperBroker simulates a venue with an in-memory balance and last-price
// cache. Orders fill instantly at the cached price.
type PaperBroker struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	balance    decimal.Decimal
	lastPrices map[string]decimal.Decimal
}

// NewPaperBroker creates a paper broker with the given starting balance.
func NewPaperBroker(logger *zap.Logger, startingBalance decimal.Decimal) *PaperBroker {
	return &PaperBroker{
		logger:     logger,
		balance:    startingBalance,
		lastPrices: make(map[string]decimal.Decimal),
	}
}

// SetLastPrice updates the cached market price for a symbol, typically once
// per bar.
func (b *PaperBroker) SetLastPrice(symbol string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastPrices[symbol] = price
}

// GetLastPrice returns the cached price, zero if none is known.
func (b *PaperBroker) GetLastPrice(symbol string) (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastPrices[symbol], nil
}

// GetBalance returns the current cash balance.
func (b *PaperBroker) GetBalance() (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balance, nil
}

// PlaceOrder fills a market order against the cached price. Missing prices
// and insufficient balance reject the order; rejection is a result, not an
// error.
func (b *PaperBroker) PlaceOrder(req types.OrderRequest) (types.OrderResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	price := b.lastPrices[req.Symbol]
	if !price.IsPositive() {
		return types.OrderResult{
			Status: types.OrderStatusRejected,
			Reason: "no market price available",
		}, nil
	}

	cost := req.Quantity.Mul(price)

	switch req.Side {
	case types.OrderSideBuy:
		if cost.GreaterThan(b.balance) {
			return types.OrderResult{
				Status: types.OrderStatusRejected,
				Reason: "insufficient balance",
			}, nil
		}
		b.balance = b.balance.Sub(cost)
	case types.OrderSideSell:
		b.balance = b.balance.Add(cost)
	default:
		return types.OrderResult{
			Status: types.OrderStatusRejected,
			Reason: "unknown order side",
		}, nil
	}

	b.logger.Debug("paper order filled",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("qty", req.Quantity.String()),
		zap.String("price", price.String()),
	)

	return types.OrderResult{
		OrderID:   uuid.New().String(),
		Status:    types.OrderStatusFilled,
		FilledQty: req.Quantity,
		AvgPrice:  price,
	}, nil
}
