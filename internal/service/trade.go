package service

import (
	"github.com/chucky-1/papertrade/internal/metrics"
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/chucky-1/papertrade/internal/repository"
	"github.com/chucky-1/papertrade/internal/request"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"context"
	"fmt"
	"time"
)

// Buy opens a new lot at the current price if the balance covers it
func (s *Service) Buy(ctx context.Context, r *request.Trade) (result *model.BuyResult, err error) {
	defer func() {
		metrics.TradesTotal.WithLabelValues("buy", model.Reason(err)).Inc()
	}()

	if err = r.Validate(); err != nil {
		return nil, err
	}
	price, err := s.price(ctx, r.Asset)
	if err != nil {
		return nil, err
	}
	cost := price.Mul(r.Amount)

	unlock := s.users.Lock(r.UserID)
	defer unlock()

	err = s.rep.Atomic(ctx, r.UserID, func(tx repository.Tx) error {
		positions, err := tx.Positions(ctx, r.UserID)
		if err != nil {
			return err
		}
		balance := s.balance(positions)
		if !checkTransaction(balance, cost) {
			return fmt.Errorf("%w: cost %s, balance %s", model.ErrInsufficientBalance, cost, balance)
		}
		return tx.Insert(ctx, &model.Position{
			ID:       uuid.New(),
			UserID:   r.UserID,
			Asset:    r.Asset,
			Amount:   r.Amount,
			BuyPrice: price,
			TimeOpen: time.Now(),
		})
	})
	if err != nil {
		return nil, classify(err)
	}

	log.WithFields(log.Fields{
		"user":   r.UserID,
		"asset":  r.Asset,
		"amount": r.Amount,
		"price":  price,
	}).Info("bought")
	return &model.BuyResult{Asset: r.Asset, Amount: r.Amount, UnitPrice: price, Cost: cost}, nil
}

// Sell reduces or removes the oldest lot of the asset.
// Lots are not aggregated: the oldest lot alone must cover the amount
func (s *Service) Sell(ctx context.Context, r *request.Trade) (result *model.SellResult, err error) {
	defer func() {
		metrics.TradesTotal.WithLabelValues("sell", model.Reason(err)).Inc()
	}()

	if err = r.Validate(); err != nil {
		return nil, err
	}

	// checked before the oracle call so a sell that can't succeed costs no lookup
	lots, err := s.rep.PositionsByAsset(ctx, r.UserID, r.Asset)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !covers(lots, r.Amount) {
		return nil, insufficientHoldings(r)
	}

	price, err := s.price(ctx, r.Asset)
	if err != nil {
		return nil, err
	}

	unlock := s.users.Lock(r.UserID)
	defer unlock()

	err = s.rep.Atomic(ctx, r.UserID, func(tx repository.Tx) error {
		lots, err := tx.PositionsByAsset(ctx, r.UserID, r.Asset)
		if err != nil {
			return err
		}
		if !covers(lots, r.Amount) {
			return insufficientHoldings(r)
		}
		lot := lots[0]
		remaining := lot.Amount.Sub(r.Amount)
		if remaining.IsZero() {
			return tx.Delete(ctx, lot.ID)
		}
		return tx.UpdateAmount(ctx, lot.ID, remaining)
	})
	if err != nil {
		return nil, classify(err)
	}

	revenue := r.Amount.Mul(price)
	log.WithFields(log.Fields{
		"user":    r.UserID,
		"asset":   r.Asset,
		"amount":  r.Amount,
		"price":   price,
		"revenue": revenue,
	}).Info("sold")
	return &model.SellResult{Asset: r.Asset, Amount: r.Amount, UnitPrice: price, Revenue: revenue}, nil
}

// Return true if enough money and false if not enough money
func checkTransaction(balance, sum decimal.Decimal) bool {
	return balance.Sub(sum).GreaterThanOrEqual(decimal.Zero)
}

// covers reports whether the oldest lot holds at least amount
func covers(lots []*model.Position, amount decimal.Decimal) bool {
	return len(lots) > 0 && lots[0].Amount.GreaterThanOrEqual(amount)
}

func insufficientHoldings(r *request.Trade) error {
	return fmt.Errorf("%w: %s %s", model.ErrInsufficientHoldings, r.Amount, r.Asset)
}
