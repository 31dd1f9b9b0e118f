// Package rates serves BCV exchange rates (VES and EUR per USD) from an
// upstream provider, with a cache in front so the storefront never waits
// on the provider for every quote.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ventazo/backend/internal/cache"
	"ventazo/backend/internal/domain"
)

const cacheKey = "rates:bcv"

// Fallback rates used when no provider is configured and the cache is
// cold. Stale rates are better than a dead quote endpoint.
var defaultRates = domain.ExchangeRates{VES: 36.50, EUR: 0.92}

// Provider fetches current rates from an upstream source.
type Provider interface {
	Fetch(ctx context.Context) (domain.ExchangeRates, error)
}

// HTTPProvider pulls rates from a JSON endpoint shaped like
// {"ves": 36.5, "eur": 0.92}.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context) (domain.ExchangeRates, error) {
	if p.baseURL == "" {
		return domain.ExchangeRates{}, fmt.Errorf("rates provider not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return domain.ExchangeRates{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.ExchangeRates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ExchangeRates{}, fmt.Errorf("rates provider returned %d: %s", resp.StatusCode, string(body))
	}

	var rates domain.ExchangeRates
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return domain.ExchangeRates{}, err
	}
	if rates.VES <= 0 {
		return domain.ExchangeRates{}, fmt.Errorf("rates provider returned non-positive VES rate")
	}
	return rates, nil
}

// Service answers rate lookups cache-first, falling through to the
// provider and finally to the static defaults.
type Service struct {
	provider Provider
	cache    cache.RatesCache
	cacheTTL time.Duration
}

func NewService(provider Provider, cacheStore cache.RatesCache, cacheTTL time.Duration) *Service {
	if cacheStore == nil {
		cacheStore = cache.NoopRatesCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Service{
		provider: provider,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) Current(ctx context.Context) domain.ExchangeRates {
	if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
		return *cached
	}

	if s.provider != nil {
		rates, err := s.provider.Fetch(ctx)
		if err == nil {
			rates.FetchedAt = time.Now().UTC()
			if cacheErr := s.cache.Set(ctx, cacheKey, &rates, s.cacheTTL); cacheErr != nil {
				log.Printf("[rates] cache set failed: %v", cacheErr)
			}
			return rates
		}
		log.Printf("[rates] provider fetch failed, serving defaults: %v", err)
	}

	fallback := defaultRates
	fallback.FetchedAt = time.Now().UTC()
	return fallback
}
