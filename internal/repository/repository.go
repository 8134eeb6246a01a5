// Package repository stores positions and caches prices
package repository

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"context"
	"errors"
)

// ErrPositionNotFound is returned when an update or delete matches no lot
var ErrPositionNotFound = errors.New("position not found")

// Reader reads open positions. Lots come back in the order they were opened
type Reader interface {
	Positions(ctx context.Context, userID int64) ([]*model.Position, error)
	PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error)
}

// Tx is a unit of work on one user's positions
type Tx interface {
	Reader
	Insert(ctx context.Context, position *model.Position) error
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ledger is the durable store of open positions.
// Atomic runs fn in one transaction scoped to userID and commits only if fn returns nil
type Ledger interface {
	Reader
	Atomic(ctx context.Context, userID int64, fn func(tx Tx) error) error
}

const schemaPortfolio = "portfolio"

// validPosition guards the store against zero-amount lots
func validPosition(position *model.Position) error {
	if !position.Amount.IsPositive() {
		return errors.New("position amount must be positive")
	}
	return nil
}
