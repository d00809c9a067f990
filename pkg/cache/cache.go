package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second

	keyCategoriesAll  = "categories:all"
	keyCategoryPrefix = "categories:slug:"
	keySettingsPublic = "settings:public"
	keySettingsAll    = "settings:all"
)

var (
	ErrCacheDisabled = errors.New("cache disabled")
	ErrCacheMiss     = errors.New("key not found")
)

type Cache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewCache connects to Redis when enabled. addr accepts either host:port or a
// redis:// URL.
func NewCache(addr string, enable bool, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if !enable {
		return &Cache{enabled: false, ttl: ttl}, nil
	}

	options := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		options = parsed
	}
	options.PoolSize = 10
	options.MinIdleConns = 5
	options.DialTimeout = 5 * time.Second
	options.ReadTimeout = 3 * time.Second
	options.WriteTimeout = 3 * time.Second

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
		ttl:     ttl,
	}, nil
}

// operationContext creates a context with timeout for Redis operations
func (c *Cache) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), defaultOperationTimeout)
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Cache) defaultTTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, expiration).Err()
}

func (c *Cache) Get(key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheDisabled
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Delete(keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) DeletePattern(pattern string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping reports Redis health; a disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) CacheCategories(categories interface{}) error {
	return c.Set(keyCategoriesAll, categories, c.defaultTTL())
}

func (c *Cache) GetCachedCategories(dest interface{}) error {
	return c.Get(keyCategoriesAll, dest)
}

func (c *Cache) CacheCategory(slug string, category interface{}) error {
	return c.Set(keyCategoryPrefix+slug, category, c.defaultTTL())
}

func (c *Cache) GetCachedCategory(slug string, dest interface{}) error {
	return c.Get(keyCategoryPrefix+slug, dest)
}

// InvalidateCategories drops every cached category payload. Post writes call it
// too because category listings carry post counts.
func (c *Cache) InvalidateCategories() error {
	if err := c.Delete(keyCategoriesAll); err != nil {
		return err
	}
	return c.DeletePattern(keyCategoryPrefix + "*")
}

func (c *Cache) CacheSettings(public bool, settings interface{}) error {
	return c.Set(settingsKey(public), settings, c.defaultTTL())
}

func (c *Cache) GetCachedSettings(public bool, dest interface{}) error {
	return c.Get(settingsKey(public), dest)
}

func (c *Cache) InvalidateSettings() error {
	return c.Delete(keySettingsPublic, keySettingsAll)
}

func settingsKey(public bool) string {
	if public {
		return keySettingsPublic
	}
	return keySettingsAll
}
