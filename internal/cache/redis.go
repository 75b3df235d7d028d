// Package cache holds the optional Redis layer: cached dashboard payloads and
// short-lived locks. Caching is a no-op when Redis is not configured or
// unreachable and locks fall back to process memory, so callers never branch
// on availability.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/config"
)

const (
	dashboardKeyFmt = "dashboard:%s"
	reportsKeyFmt   = "reports:%s"
	lockKeyFmt      = "lock:%s"
)

// ErrLocked is returned when another holder owns the lock.
var ErrLocked = errors.New("resource is locked")

// Cache wraps a Redis client. A Cache with a nil client is valid and caches
// nothing.
type Cache struct {
	client *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger

	// in-process locks used when no Redis client is attached
	mu   sync.Mutex
	held map[string]time.Time
}

// New connects to Redis when an address is configured. A failed ping is
// logged and yields a disabled cache rather than an error.
func New(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		logger.Info("redis not configured, caching disabled")
		return &Cache{ttl: cfg.TTL, logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, caching disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return &Cache{ttl: cfg.TTL, logger: logger}
	}

	return NewWithClient(client, cfg.TTL, logger)
}

// NewWithClient wraps an existing client. client may be nil.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{client: client, ttl: ttl, logger: logger}
	if client != nil {
		c.locker = redislock.New(client)
	}
	return c
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// DashboardKey is the cache key of an owner's dashboard payload.
func DashboardKey(ownerID string) string {
	return fmt.Sprintf(dashboardKeyFmt, ownerID)
}

// ReportsKey is the cache key of an owner's reports payload.
func ReportsKey(ownerID string) string {
	return fmt.Sprintf(reportsKeyFmt, ownerID)
}

// GetJSON loads a cached value into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores a value with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateOwner drops every cached payload derived from the owner's data.
func (c *Cache) InvalidateOwner(ctx context.Context, ownerID string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, DashboardKey(ownerID), ReportsKey(ownerID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// Lock obtains a short-lived lock on name. The returned release function is
// always safe to call. Without Redis the lock is held in process, which still
// serialises callers of a single instance.
func (c *Cache) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	if !c.Enabled() {
		return c.localLock(name, ttl)
	}

	lock, err := c.locker.Obtain(ctx, fmt.Sprintf(lockKeyFmt, name), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return func() {}, ErrLocked
	}
	if err != nil {
		c.logger.Warn("redis lock unavailable, falling back to local lock", zap.String("name", name), zap.Error(err))
		return c.localLock(name, ttl)
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			c.logger.Debug("lock release failed", zap.String("name", name), zap.Error(err))
		}
	}, nil
}

func (c *Cache) localLock(name string, ttl time.Duration) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.held == nil {
		c.held = make(map[string]time.Time)
	}
	if expiry, ok := c.held[name]; ok && now.Before(expiry) {
		return func() {}, ErrLocked
	}
	expiry := now.Add(ttl)
	c.held[name] = expiry

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			// a lock that expired and was taken again belongs to someone else
			if c.held[name].Equal(expiry) {
				delete(c.held, name)
			}
		})
	}, nil
}

// Healthy reports whether Redis answers a ping. A disabled cache is healthy.
func (c *Cache) Healthy(ctx context.Context) bool {
	if !c.Enabled() {
		return true
	}
	return c.client.Ping(ctx).Err() == nil
}

// Close releases the client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
