// Package data provides historical price series loading: a live HTTP
// source, a local CSV store, and a fallback that tries them in order.
package data

import (
	"context"
	"time"

	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Provider loads an ordered price series for a symbol. Implementations may
// fail or return empty; callers treat both as terminal, data is never
// fabricated.
type Provider interface {
	Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error)
}

// FallbackProvider tries a live source first and a local store second.
type FallbackProvider struct {
	logger *zap.Logger
	live   Provider
	local  Provider
}

// NewFallbackProvider creates a provider chain. Either source may be nil;
// at least one must be set.
func NewFallbackProvider(logger *zap.Logger, live, local Provider) *FallbackProvider {
	return &FallbackProvider{logger: logger, live: live, local: local}
}

// Load returns the first non-empty series from the chain.
func (p *FallbackProvider) Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error) {
	if p.live != nil {
		series, err := p.live.Load(ctx, symbol, start, end)
		if err == nil && len(series) > 0 {
			return series, nil
		}
		if err != nil {
			p.logger.Warn("live price source failed, falling back to local store",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		} else {
			p.logger.Warn("live price source returned no data, falling back to local store",
				zap.String("symbol", symbol),
			)
		}
	}

	if p.local != nil {
		series, err := p.local.Load(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			return series, nil
		}
	}

	return nil, &types.DataError{Symbol: symbol, Reason: "no price data could be loaded"}
}
