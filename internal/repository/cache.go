package repository

import (
	"github.com/go-redis/cache/v8"
	"github.com/shopspring/decimal"

	"context"
	"time"
)

// Cache keeps recently resolved prices
type Cache struct {
	cache    *cache.Cache
	currency string
	ttl      time.Duration
}

// NewCache is constructor
func NewCache(cache *cache.Cache, currency string, ttl time.Duration) *Cache {
	return &Cache{cache: cache, currency: currency, ttl: ttl}
}

// Set stores the price of asset
func (c *Cache) Set(ctx context.Context, asset string, price decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   c.key(asset),
		Value: price.String(),
		TTL:   c.ttl,
	})
}

// Get returns the cached price of asset or cache.ErrCacheMiss
func (c *Cache) Get(ctx context.Context, asset string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	var price string
	err := c.cache.Get(ctx, c.key(asset), &price)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(price)
}

func (c *Cache) key(asset string) string {
	return "price:" + c.currency + ":" + asset
}
