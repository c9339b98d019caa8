package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type frozenCacheValue struct {
	IsFrozen  bool      `json:"is_frozen"`
	CheckedAt time.Time `json:"checked_at"`
}

// RedisFrozenCache keeps recent frozen-check results in Redis in front of the
// backend. Entries expire on their own; the backend row stays authoritative.
type RedisFrozenCache struct {
	client *RedisClient
}

func NewRedisFrozenCache(client *RedisClient) *RedisFrozenCache {
	return &RedisFrozenCache{client: client}
}

func (c *RedisFrozenCache) key(channelRef, phone string) string {
	return c.client.generateKey("frozen", channelRef, phone)
}

func (c *RedisFrozenCache) Get(ctx context.Context, channelRef, phone string) (frozen bool, checkedAt time.Time, ok bool, err error) {
	var v frozenCacheValue
	if err := c.client.Get(ctx, c.key(channelRef, phone), &v); err != nil {
		if errors.Is(err, errCacheMiss) {
			return false, time.Time{}, false, nil
		}
		return false, time.Time{}, false, err
	}
	return v.IsFrozen, v.CheckedAt, true, nil
}

func (c *RedisFrozenCache) Set(ctx context.Context, channelRef, phone string, frozen bool, checkedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(channelRef, phone), frozenCacheValue{IsFrozen: frozen, CheckedAt: checkedAt}, ttl)
}
