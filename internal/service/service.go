// Package service have business logic
package service

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/chucky-1/papertrade/internal/oracle"
	"github.com/chucky-1/papertrade/internal/repository"
	"github.com/chucky-1/papertrade/internal/request"
	"github.com/chucky-1/papertrade/internal/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"context"
	"errors"
	"fmt"
	"time"
)

// Service implements the ledger engine.
// Balance is derived: starting balance minus the cost basis of the open lots. Realized profit is never added back
type Service struct {
	rep             repository.Ledger
	oracle          oracle.Oracle
	users           *user.Locks
	startingBalance decimal.Decimal
	oracleTimeout   time.Duration
}

// NewService is constructor
func NewService(rep repository.Ledger, o oracle.Oracle, startingBalance decimal.Decimal, oracleTimeout time.Duration) *Service {
	return &Service{
		rep:             rep,
		oracle:          o,
		users:           user.NewLocks(),
		startingBalance: startingBalance,
		oracleTimeout:   oracleTimeout,
	}
}

// GetBalance returns balance of user
func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	positions, err := s.rep.Positions(ctx, userID)
	if err != nil {
		return decimal.Zero, storeFailure(err)
	}
	return s.balance(positions), nil
}

// Price returns the current price of asset under its lookup key
func (s *Service) Price(ctx context.Context, asset string) (*model.Quote, error) {
	asset, err := request.NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	price, err := s.price(ctx, asset)
	if err != nil {
		return nil, err
	}
	return &model.Quote{Asset: asset, Price: price}, nil
}

func (s *Service) balance(positions []*model.Position) decimal.Decimal {
	invested := decimal.Zero
	for _, position := range positions {
		invested = invested.Add(position.CostBasis())
	}
	return s.startingBalance.Sub(invested)
}

// price asks the oracle once, bounded by the oracle timeout
func (s *Service) price(ctx context.Context, asset string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	price, err := s.oracle.Price(ctx, asset)
	if err == nil {
		return price, nil
	}
	if errors.Is(err, oracle.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%w: %s", model.ErrAssetNotFound, asset)
	}
	log.WithField("asset", asset).Warnf("price lookup failed: %v", err)
	return decimal.Zero, fmt.Errorf("%w: %s: %v", model.ErrPriceUnavailable, asset, err)
}

func storeFailure(err error) error {
	if err == nil {
		return nil
	}
	log.Error(err)
	return fmt.Errorf("%w: %v", model.ErrStoreFailure, err)
}

// classify keeps ledger errors and turns everything else into a store failure
func classify(err error) error {
	if err == nil || model.IsClassified(err) {
		return err
	}
	return storeFailure(err)
}
