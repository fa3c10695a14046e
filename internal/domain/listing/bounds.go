package listing

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
)

// Bounds describes the valid domain and granularity of the price
// slider for a single currency.
type Bounds struct {
	Min        decimal.Decimal `json:"min"`
	Max        decimal.Decimal `json:"max"`
	Step       decimal.Decimal `json:"step"`
	DefaultMax decimal.Decimal `json:"default_max"`
}

// Two granularity tiers exist: strong currencies get a fine-grained
// slider (step 1), weak currencies a coarse one (step 500). Unknown
// codes fall back to the coarse tier, which matches the base currency.
var (
	fineBounds = Bounds{
		Min:        decimal.Zero,
		Max:        decimal.NewFromInt(150),
		Step:       decimal.NewFromInt(1),
		DefaultMax: decimal.NewFromInt(30),
	}
	coarseBounds = Bounds{
		Min:        decimal.Zero,
		Max:        decimal.NewFromInt(30000),
		Step:       decimal.NewFromInt(500),
		DefaultMax: decimal.NewFromInt(30000),
	}
)

// fineTier holds the currencies rendered with the fine-grained slider
var fineTier = map[currency.Code]struct{}{
	currency.USD: {},
	currency.EUR: {},
	currency.GBP: {},
	currency.AUD: {},
}

// ResolveBounds maps a currency code to its slider bounds.
// Deterministic and I/O free; unrecognized codes get the coarse tier.
func ResolveBounds(code currency.Code) Bounds {
	if _, ok := fineTier[code]; ok {
		return fineBounds
	}
	return coarseBounds
}

// DefaultRange returns the range a fresh session starts with when
// nothing is persisted and the URL carries no prices.
func DefaultRange(b Bounds) PriceRange {
	return PriceRange{Min: decimal.Zero, Max: b.DefaultMax}
}
