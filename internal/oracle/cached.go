package oracle

import (
	"github.com/chucky-1/papertrade/internal/metrics"
	"github.com/chucky-1/papertrade/internal/repository"
	"github.com/go-redis/cache/v8"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"context"
	"errors"
)

// Cached serves prices from the cache and falls back to the next oracle
type Cached struct {
	next  Oracle
	cache *repository.Cache
}

// NewCached is constructor
func NewCached(next Oracle, cache *repository.Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// Price returns a cached price when there is one
func (c *Cached) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	price, err := c.cache.Get(ctx, asset)
	if err == nil {
		metrics.PriceCacheTotal.WithLabelValues("hit").Inc()
		return price, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warnf("price cache read for %s failed: %v", asset, err)
	}
	metrics.PriceCacheTotal.WithLabelValues("miss").Inc()

	price, err = c.next.Price(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if err = c.cache.Set(ctx, asset, price); err != nil {
		log.Warnf("price cache write for %s failed: %v", asset, err)
	}
	return price, nil
}
