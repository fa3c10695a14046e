package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"go.uber.org/zap"
)

// DebouncedRangeStore coalesces rapid Save calls per currency into a
// single write to the backing store after a quiet window. Slider
// commits can arrive in quick succession; only the settled value is
// worth persisting. Loads read through the pending value so callers
// always see their latest save.
type DebouncedRangeStore struct {
	inner  listing.RangeStore
	window time.Duration
	log    *zap.Logger

	mu         sync.Mutex
	pending    map[currency.Code]listing.PriceRange
	debouncers map[currency.Code]*listing.Debouncer
}

// NewDebouncedRangeStore wraps a store with a per-currency write
// debounce. A non-positive window defaults to 300ms.
func NewDebouncedRangeStore(inner listing.RangeStore, window time.Duration, log *zap.Logger) *DebouncedRangeStore {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &DebouncedRangeStore{
		inner:      inner,
		window:     window,
		log:        log,
		pending:    make(map[currency.Code]listing.PriceRange),
		debouncers: make(map[currency.Code]*listing.Debouncer),
	}
}

// Load returns the pending value if a write is queued, otherwise the
// backing store's value
func (s *DebouncedRangeStore) Load(ctx context.Context, code currency.Code) (*listing.PriceRange, error) {
	s.mu.Lock()
	if r, ok := s.pending[code]; ok {
		s.mu.Unlock()
		return &r, nil
	}
	s.mu.Unlock()

	return s.inner.Load(ctx, code)
}

// Save queues the range and schedules a flush after the quiet window
func (s *DebouncedRangeStore) Save(ctx context.Context, code currency.Code, r listing.PriceRange) error {
	s.mu.Lock()
	s.pending[code] = r
	d, ok := s.debouncers[code]
	if !ok {
		d = listing.NewDebouncer(s.window)
		s.debouncers[code] = d
	}
	s.mu.Unlock()

	d.Trigger(func() { s.flush(code) })
	return nil
}

// Clear drops any queued write and clears the backing store
func (s *DebouncedRangeStore) Clear(ctx context.Context, code currency.Code) error {
	s.mu.Lock()
	delete(s.pending, code)
	if d, ok := s.debouncers[code]; ok {
		d.Stop()
	}
	s.mu.Unlock()

	return s.inner.Clear(ctx, code)
}

func (s *DebouncedRangeStore) flush(code currency.Code) {
	s.mu.Lock()
	r, ok := s.pending[code]
	delete(s.pending, code)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := s.inner.Save(context.Background(), code, r); err != nil {
		s.log.Warn("failed to flush persisted range",
			zap.String("currency", code.String()),
			zap.Error(err),
		)
	}
}

// Flush writes all queued ranges immediately. Called on shutdown so
// queued saves are not lost.
func (s *DebouncedRangeStore) Flush(ctx context.Context) {
	s.mu.Lock()
	queued := make(map[currency.Code]listing.PriceRange, len(s.pending))
	for code, r := range s.pending {
		queued[code] = r
	}
	s.pending = make(map[currency.Code]listing.PriceRange)
	for _, d := range s.debouncers {
		d.Stop()
	}
	s.mu.Unlock()

	for code, r := range queued {
		if err := s.inner.Save(ctx, code, r); err != nil {
			s.log.Warn("failed to flush persisted range",
				zap.String("currency", code.String()),
				zap.Error(err),
			)
		}
	}
}

var _ listing.RangeStore = (*DebouncedRangeStore)(nil)
