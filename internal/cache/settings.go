// Package cache provides Redis-backed read-through caches for domain
// repositories.
package cache

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/domain/settings"
)

// ErrCacheMiss is returned when the key is absent from Redis.
var ErrCacheMiss = errors.New("cache miss")

const settingsKey = "store-admin:settings"

var _ settings.Repository = (*SettingsCache)(nil)

// SettingsCache decorates a settings.Repository with a Redis read-through
// cache. Redis failures are logged and served from the underlying repository.
type SettingsCache struct {
	next    settings.Repository
	client  redis.UniversalClient
	baseTTL time.Duration
}

// NewSettingsCache wraps next. A non-positive ttl defaults to five minutes.
func NewSettingsCache(next settings.Repository, client redis.UniversalClient, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SettingsCache{next: next, client: client, baseTTL: ttl}
}

// Get serves the settings from Redis, loading and caching them on a miss.
// A missing settings row is not cached. The fill never replaces an entry
// written by a concurrent Upsert.
func (c *SettingsCache) Get(ctx context.Context) (*settings.StoreSettings, error) {
	lg := zctx.From(ctx)

	s, err := c.load(ctx)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, ErrCacheMiss):
	default:
		lg.Warn("Settings cache read failed", zap.Error(err))
	}

	s, err = c.next.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, s, false); err != nil {
		lg.Warn("Settings cache write failed", zap.Error(err))
	}
	return s, nil
}

// Upsert writes through to the repository and replaces the cached copy.
// If the replace fails the entry is dropped instead.
func (c *SettingsCache) Upsert(ctx context.Context, s *settings.StoreSettings) error {
	if err := c.next.Upsert(ctx, s); err != nil {
		return err
	}
	lg := zctx.From(ctx)
	if err := c.store(ctx, s, true); err != nil {
		lg.Warn("Settings cache write failed", zap.Error(err))
		if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
			lg.Warn("Settings cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

func (c *SettingsCache) load(ctx context.Context) (*settings.StoreSettings, error) {
	data, err := c.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var s settings.StoreSettings
	if err := json.Unmarshal(data, &s); err != nil {
		// Drop the entry so the next fill can replace it.
		if delErr := c.client.Del(ctx, settingsKey).Err(); delErr != nil {
			return nil, errors.Wrap(delErr, "redis del")
		}
		return nil, errors.Wrap(err, "unmarshal settings")
	}
	return &s, nil
}

// store writes s under settingsKey. Without overwrite an existing entry is
// kept.
func (c *SettingsCache) store(ctx context.Context, s *settings.StoreSettings, overwrite bool) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal settings")
	}

	// Jitter spreads expiry across replicas.
	ttl := c.baseTTL + time.Duration(rand.Int64N(int64(c.baseTTL/5)+1))
	if overwrite {
		if err := c.client.Set(ctx, settingsKey, data, ttl).Err(); err != nil {
			return errors.Wrap(err, "redis set")
		}
		return nil
	}
	if err := c.client.SetNX(ctx, settingsKey, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis setnx")
	}
	return nil
}
