package execution

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// BinanceBroker is the Binance venue adapter. Price caching works; account
// operations are not wired to the live API yet and return
// types.ErrUnsupported, which callers treat as a terminal outcome.
type BinanceBroker struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	lastPrices map[string]decimal.Decimal
}

// NewBinanceBroker creates the adapter.
func NewBinanceBroker(logger *zap.Logger) *BinanceBroker {
	return &BinanceBroker{
		logger:     logger,
		lastPrices: make(map[string]decimal.Decimal),
	}
}

// SetLastPrice refreshes the price cache. In production this is driven by
// the exchange's ticker stream.
func (b *BinanceBroker) SetLastPrice(symbol string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastPrices[symbol] = price
}

// GetLastPrice returns the most recent known price, zero if none.
func (b *BinanceBroker) GetLastPrice(symbol string) (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastPrices[symbol], nil
}

// GetBalance is not supported until the account API is wired up.
func (b *BinanceBroker) GetBalance() (decimal.Decimal, error) {
	return decimal.Zero, types.ErrUnsupported
}

// PlaceOrder is not supported until the order API is wired up.
func (b *BinanceBroker) PlaceOrder(req types.OrderRequest) (types.OrderResult, error) {
	return types.OrderResult{}, types.ErrUnsupported
}
