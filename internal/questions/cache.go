package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/cybersage/internal/logger"
)

// Cache stores encoded question sets.
type Cache interface {
	// Get returns the cached value. The bool is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisCache connects to the Redis server at url
// (e.g. "redis://localhost:6379/0") and verifies it with a ping.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *goredis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: "cybersage:questions:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedSource serves repeated requests from a Cache before asking the
// wrapped source. Cache failures are logged and bypassed.
type CachedSource struct {
	inner Source
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSource wraps inner with cache. A zero ttl stores entries with
// no expiry.
func NewCachedSource(inner Source, cache Cache, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: cache, ttl: ttl, log: logger.OrNop(log)}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

// CacheKey returns the cache key for req.
func CacheKey(source string, req Request) string {
	module := req.ModuleID
	if module == "" {
		module = "_practice"
	}
	return fmt.Sprintf("%s:%s:%s:%d", source, module, req.Difficulty, req.Count)
}

func (s *CachedSource) Fetch(ctx context.Context, req Request) (*Set, error) {
	key := CacheKey(s.inner.Name(), req)

	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("question cache read failed", "key", key, "error", err)
	case ok:
		var set Set
		if err := json.Unmarshal(raw, &set); err == nil && set.Len() > 0 {
			return &set, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key)
	}

	set, err := s.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(set); err == nil {
		if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
			s.log.Warn("question cache write failed", "key", key, "error", err)
		}
	}
	return set, nil
}
