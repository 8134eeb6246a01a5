package service

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"context"
	"sync"
)

// priceFanOut bounds concurrent oracle lookups of one valuation
const priceFanOut = 8

type quote struct {
	price decimal.Decimal
	err   error
}

// Portfolio values every open lot of the user at current prices.
// A lot whose price can't be resolved is still listed, without current value
func (s *Service) Portfolio(ctx context.Context, userID int64) ([]*model.PortfolioLine, error) {
	positions, err := s.rep.Positions(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}

	quotes := s.quotes(ctx, positions)
	lines := make([]*model.PortfolioLine, 0, len(positions))
	for _, position := range positions {
		lines = append(lines, valuation(position, quotes[position.Asset]))
	}
	return lines, nil
}

// quotes resolves each distinct asset once
func (s *Service) quotes(ctx context.Context, positions []*model.Position) map[string]quote {
	var (
		mu     sync.Mutex
		g      errgroup.Group
		quotes = make(map[string]quote)
		seen   = make(map[string]bool)
	)
	g.SetLimit(priceFanOut)
	for _, position := range positions {
		asset := position.Asset
		if seen[asset] {
			continue
		}
		seen[asset] = true
		g.Go(func() error {
			price, err := s.price(ctx, asset)
			mu.Lock()
			quotes[asset] = quote{price: price, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return quotes
}

// valuation is profit and loss of one lot. Shows how much you earned or lost
func valuation(position *model.Position, q quote) *model.PortfolioLine {
	line := &model.PortfolioLine{
		Asset:    position.Asset,
		Amount:   position.Amount,
		BuyPrice: position.BuyPrice,
		Invested: position.CostBasis(),
	}
	if q.err != nil {
		line.Err = q.err
		return line
	}
	current := q.price.Mul(position.Amount)
	pnl := current.Sub(line.Invested)
	line.CurrentValue = &current
	line.ProfitLoss = &pnl
	return line
}
