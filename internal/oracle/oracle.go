// Package oracle resolves asset symbols to current prices
package oracle

import (
	"github.com/shopspring/decimal"

	"context"
	"errors"
)

var (
	// ErrNotFound means the symbol is unknown to the price source
	ErrNotFound = errors.New("symbol not found")
	// ErrUnavailable means the price source could not answer
	ErrUnavailable = errors.New("price source unavailable")
)

// Oracle returns the current unit price of an asset
type Oracle interface {
	Price(ctx context.Context, asset string) (decimal.Decimal, error)
}
