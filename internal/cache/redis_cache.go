package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"ventazo/backend/internal/domain"
)

type RedisRatesCache struct {
	client *redis.Client
}

func NewRedisRatesCache(addr string, password string, db int) *RedisRatesCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisRatesCache{client: client}
}

func (c *RedisRatesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRatesCache) Close() error {
	return c.client.Close()
}

func (c *RedisRatesCache) Get(ctx context.Context, key string) (*domain.ExchangeRates, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rates domain.ExchangeRates
	if err := json.Unmarshal([]byte(val), &rates); err != nil {
		return nil, false, err
	}
	return &rates, true, nil
}

func (c *RedisRatesCache) Set(ctx context.Context, key string, value *domain.ExchangeRates, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
