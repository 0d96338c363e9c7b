// Package cache is a small JSON value cache. Redis backs it in production;
// Memory serves tests and single-process setups. A nil *Redis is a valid
// no-op cache so callers never branch on availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/metrics"
)

// Store is what repositories depend on.
type Store interface {
	// Get unmarshals the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

type Redis struct {
	rdb *redis.Client
}

// Connect builds the Redis cache from config and verifies it with a ping.
// On failure it returns a nil *Redis (a no-op cache) together with the error
// so the caller can log a warning and carry on.
func Connect(ctx context.Context) (*Redis, error) {
	return Dial(ctx, config.RedisAddr(), config.RedisPassword())
}

func Dial(ctx context.Context, addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	if r == nil {
		return false
	}
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(key).Inc()
	return true
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if r == nil {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Client is the underlying connection for other Redis users, such as the
// rate limiter.
func (r *Redis) Client() *redis.Client {
	if r == nil {
		return nil
	}
	return r.rdb
}

func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.rdb.Close()
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type entry struct {
	data    []byte
	expires time.Time
}

// Memory keeps JSON-encoded values in process memory.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]entry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok || json.Unmarshal(e.data, dest) != nil {
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(key).Inc()
	return true
}

// Set stores value; a zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
