// Package model has the ledger types shared by the store, the engine and the transport
package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"time"
)

// Position is one open lot of an asset held by a user
type Position struct {
	ID       uuid.UUID
	UserID   int64
	Asset    string
	Amount   decimal.Decimal
	BuyPrice decimal.Decimal
	TimeOpen time.Time
}

// CostBasis returns the part of the balance tied up in the lot
func (p *Position) CostBasis() decimal.Decimal {
	return p.Amount.Mul(p.BuyPrice)
}

// BuyResult describes an executed buy
type BuyResult struct {
	Asset     string
	Amount    decimal.Decimal
	UnitPrice decimal.Decimal
	Cost      decimal.Decimal
}

// SellResult describes an executed sell
type SellResult struct {
	Asset     string
	Amount    decimal.Decimal
	UnitPrice decimal.Decimal
	Revenue   decimal.Decimal
}

// Quote is the current price of a normalized asset
type Quote struct {
	Asset string
	Price decimal.Decimal
}

// PortfolioLine is the valuation of one open lot.
// CurrentValue and ProfitLoss are nil when the price of the asset could not be resolved, Err says why.
type PortfolioLine struct {
	Asset        string
	Amount       decimal.Decimal
	BuyPrice     decimal.Decimal
	Invested     decimal.Decimal
	CurrentValue *decimal.Decimal
	ProfitLoss   *decimal.Decimal
	Err          error
}

// Bounds of every amount and price the ledger accepts.
// Products of two bounded values stay within 60 integer and 36 fractional digits
const (
	MaxScale         = 18
	MaxIntegerDigits = 30
)

// InBounds reports whether d has at most MaxScale fractional digits and MaxIntegerDigits integer digits.
// Only exponent and coefficient length are inspected, so huge exponents are never expanded
func InBounds(d decimal.Decimal) bool {
	if d.Exponent() < -MaxScale {
		return false
	}
	return d.NumDigits()+int(d.Exponent()) <= MaxIntegerDigits
}
