package maganghub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const provinceCacheKey = "maganghub:provinces"

// ProvinceCache stores the province list between loads.
// Load returns nil without error on a miss.
type ProvinceCache interface {
	Load(ctx context.Context) ([]Province, error)
	Store(ctx context.Context, provinces []Province) error
}

type RedisProvinceCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisProvinceCache parses redisURL and verifies connectivity.
func NewRedisProvinceCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisProvinceCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisProvinceCacheFromClient(client, ttl), nil
}

func NewRedisProvinceCacheFromClient(client *redis.Client, ttl time.Duration) *RedisProvinceCache {
	return &RedisProvinceCache{rdb: client, key: provinceCacheKey, ttl: ttl}
}

func (c *RedisProvinceCache) Load(ctx context.Context) ([]Province, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var provinces []Province
	if err := json.Unmarshal(data, &provinces); err != nil {
		return nil, fmt.Errorf("decoding cached provinces: %w", err)
	}

	return provinces, nil
}

func (c *RedisProvinceCache) Store(ctx context.Context, provinces []Province) error {
	data, err := json.Marshal(provinces)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *RedisProvinceCache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
