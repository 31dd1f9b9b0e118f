package cache

import (
	"context"
	"time"

	"ventazo/backend/internal/domain"
)

type RatesCache interface {
	Get(ctx context.Context, key string) (*domain.ExchangeRates, bool, error)
	Set(ctx context.Context, key string, value *domain.ExchangeRates, ttl time.Duration) error
}

type NoopRatesCache struct{}

func (NoopRatesCache) Get(_ context.Context, _ string) (*domain.ExchangeRates, bool, error) {
	return nil, false, nil
}

func (NoopRatesCache) Set(_ context.Context, _ string, _ *domain.ExchangeRates, _ time.Duration) error {
	return nil
}
