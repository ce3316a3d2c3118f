package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/logger"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	OrderCacheKey(orderID string) string
}

// Cache keeps recently read order snapshots in Redis. Failures are
// logged and swallowed so a cache outage never blocks reads.
type Cache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewCache builds the order snapshot cache.
func NewCache(store cacheStore, ttl time.Duration, logg *logger.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logg: logg}
}

// Get returns the cached order, or nil on a miss.
func (c *Cache) Get(ctx context.Context, orderID string) *models.Order {
	if c == nil || c.store == nil {
		return nil
	}
	raw, err := c.store.Get(ctx, c.store.OrderCacheKey(orderID))
	if err != nil {
		if !errors.Is(err, redislib.Nil) && c.logg != nil {
			c.logg.Warn(ctx, "order cache read failed")
		}
		return nil
	}
	var order models.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "order cache entry corrupt")
		}
		return nil
	}
	return &order
}

// Set stores the order snapshot for the configured TTL.
func (c *Cache) Set(ctx context.Context, order *models.Order) {
	if c == nil || c.store == nil || order == nil {
		return
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.store.OrderCacheKey(order.ID.String()), payload, c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "order cache write failed")
	}
}

// Invalidate drops the snapshot after a mutation.
func (c *Cache) Invalidate(ctx context.Context, orderID string) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Del(ctx, c.store.OrderCacheKey(orderID)); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "order cache invalidate failed")
	}
}
