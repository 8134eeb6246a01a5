// Package request has structs
package request

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/shopspring/decimal"

	"fmt"
	"strconv"
	"strings"
)

// Trade stores parameters of a buy or a sell
type Trade struct {
	UserID int64
	Asset  string
	Amount decimal.Decimal
}

// NewTrade parses raw arguments as they come from a caller
func NewTrade(userID int64, asset, amount string) (*Trade, error) {
	a, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	return &Trade{UserID: userID, Asset: asset, Amount: a}, nil
}

// Validate normalizes the asset and checks the amount
func (t *Trade) Validate() error {
	asset, err := NormalizeAsset(t.Asset)
	if err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", model.ErrInvalidArgument, t.Amount)
	}
	if !model.InBounds(t.Amount) {
		return fmt.Errorf("%w: amount out of range", model.ErrInvalidArgument)
	}
	t.Asset = asset
	return nil
}

// NormalizeAsset returns the lookup key of a symbol
func NormalizeAsset(asset string) (string, error) {
	asset = strings.ToLower(strings.TrimSpace(asset))
	if asset == "" {
		return "", fmt.Errorf("%w: asset is required", model.ErrInvalidArgument)
	}
	return asset, nil
}

// ParseAmount parses a positive decimal amount within model.InBounds
func ParseAmount(s string) (decimal.Decimal, error) {
	a, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", model.ErrInvalidArgument, s)
	}
	if !a.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", model.ErrInvalidArgument, s)
	}
	if !model.InBounds(a) {
		return decimal.Zero, fmt.Errorf("%w: amount allows at most %d integer and %d fractional digits",
			model.ErrInvalidArgument, model.MaxIntegerDigits, model.MaxScale)
	}
	return a, nil
}

// ParseUserID parses a user identifier
func ParseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: user id %q", model.ErrInvalidArgument, s)
	}
	return id, nil
}
