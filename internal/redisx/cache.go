// Package redisx provides a small Redis-backed cache for denormalized order
// views. The database stays the source of truth; the cache only short-cuts
// reads and is dropped after every committed status transition.
package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyOrderView = "order:view:%s"

// NewClient creates a go-redis client for the given address.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// OrderViewCache caches serialized order views keyed by order ID. A nil
// *OrderViewCache is a no-op, so callers need no presence checks when Redis
// is not configured.
type OrderViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOrderViewCache creates an OrderViewCache with the given TTL.
func NewOrderViewCache(rdb *redis.Client, ttl time.Duration) *OrderViewCache {
	return &OrderViewCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload for the order, or false on miss or any
// Redis failure.
func (c *OrderViewCache) Get(ctx context.Context, orderID string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderView, orderID)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores the payload for the order. Failures are ignored; the next read
// falls through to the database.
func (c *OrderViewCache) Set(ctx context.Context, orderID string, payload []byte) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, fmt.Sprintf(keyOrderView, orderID), payload, c.ttl).Err()
}

// Invalidate drops the cached payload for the order after a committed status
// transition.
func (c *OrderViewCache) Invalidate(ctx context.Context, orderID string) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, fmt.Sprintf(keyOrderView, orderID)).Err()
}
