// Package types provides the typed failure kinds surfaced by the core.
package types

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks a broker operation that the venue adapter does not
// implement. Callers treat it as a legitimate terminal outcome.
var ErrUnsupported = errors.New("operation not supported by this venue")

// DataError reports an empty or malformed price series. The run or window
// that hit it is aborted; no partial output is returned.
type DataError struct {
	Symbol string
	Reason string
}

func (e *DataError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("price data: %s", e.Reason)
	}
	return fmt.Sprintf("price data for %s: %s", e.Symbol, e.Reason)
}

// ConfigError reports an invalid configuration value. Configs are rejected
// before any computation begins, never silently clamped or swapped.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
