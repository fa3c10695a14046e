package listing

import (
	"context"

	"github.com/storefront/backend/internal/domain/currency"
)

// RangeStore persists the last committed price range per currency.
// Load returns nil when nothing usable is stored for the currency;
// malformed entries are treated as absent, out-of-bounds values are
// clamped rather than rejected. Save implementations coalesce bursts
// of writes so transient drag frames never reach storage.
type RangeStore interface {
	Load(ctx context.Context, code currency.Code) (*PriceRange, error)
	Save(ctx context.Context, code currency.Code, r PriceRange) error
	Clear(ctx context.Context, code currency.Code) error
}
