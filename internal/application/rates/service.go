package rates

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/currency"
	"go.uber.org/zap"
)

// Provider fetches a fresh rate table from an external source
type Provider interface {
	Fetch(ctx context.Context) (currency.RateTable, error)
}

// Cache stores a fetched table so restarts and sibling instances do
// not hammer the external source
type Cache interface {
	Get(ctx context.Context) (currency.RateTable, error)
	Set(ctx context.Context, table currency.RateTable, ttl time.Duration) error
}

// Service serves exchange-rate tables with a freshness window. Lookups
// hit the in-memory copy while it is fresh, then the shared cache,
// then the external provider. A failed refresh serves the stale table
// rather than erroring, so listing sessions keep working through
// provider outages.
type Service struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	log      *zap.Logger

	mu        sync.Mutex
	table     currency.RateTable
	fetchedAt time.Time
}

// NewService creates a rate service. A non-positive ttl defaults to
// one hour.
func NewService(provider Provider, cache Cache, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{provider: provider, cache: cache, ttl: ttl, log: log}
}

// Table returns the current rate table, refreshing it when stale
func (s *Service) Table(ctx context.Context) (currency.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.table, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh forces a fetch regardless of freshness
func (s *Service) Refresh(ctx context.Context) (currency.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchedAt = time.Time{}
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) (currency.RateTable, error) {
	if s.cache != nil && s.table == nil {
		if table, err := s.cache.Get(ctx); err != nil {
			s.log.Warn("rate cache unavailable", zap.Error(err))
		} else if table != nil {
			s.table = table
			s.fetchedAt = time.Now()
			return table, nil
		}
	}

	table, err := s.provider.Fetch(ctx)
	if err != nil {
		if s.table != nil {
			s.log.Warn("rate refresh failed, serving stale table", zap.Error(err))
			return s.table, nil
		}
		return nil, err
	}
	if _, ok := table[currency.BaseCode]; !ok {
		table[currency.BaseCode] = currency.DefaultRates()[currency.BaseCode]
	}

	s.table = table
	s.fetchedAt = time.Now()

	if s.cache != nil {
		if err := s.cache.Set(ctx, table, s.ttl); err != nil {
			s.log.Warn("failed to cache rate table", zap.Error(err))
		}
	}
	return table, nil
}

// Run refreshes the table on an interval until the context ends
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.log.Warn("scheduled rate refresh failed", zap.Error(err))
			}
		}
	}
}
