package cache

import (
	"context"
	"sync"

	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
)

// InMemoryRangeStore keeps persisted ranges in a map. Suitable for
// single-instance deployments and testing.
type InMemoryRangeStore struct {
	mu     sync.RWMutex
	ranges map[currency.Code]listing.PriceRange
}

// NewInMemoryRangeStore creates an empty in-memory range store
func NewInMemoryRangeStore() *InMemoryRangeStore {
	return &InMemoryRangeStore{ranges: make(map[currency.Code]listing.PriceRange)}
}

// Load returns the stored range for a currency, or nil when absent
func (s *InMemoryRangeStore) Load(ctx context.Context, code currency.Code) (*listing.PriceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.ranges[code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Save stores the committed range for a currency
func (s *InMemoryRangeStore) Save(ctx context.Context, code currency.Code, r listing.PriceRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ranges[code] = r
	return nil
}

// Clear removes the stored range for a currency
func (s *InMemoryRangeStore) Clear(ctx context.Context, code currency.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ranges, code)
	return nil
}

var _ listing.RangeStore = (*InMemoryRangeStore)(nil)
