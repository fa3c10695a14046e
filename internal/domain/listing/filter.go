package listing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortBy enumerates the supported listing sort keys
type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByTitle     SortBy = "title"
	SortByPrice     SortBy = "price"
	SortByFeatured  SortBy = "featured"
)

// SortOrder enumerates the supported sort directions
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortBy validates a raw sort key, falling back to the default
func ParseSortBy(raw string) SortBy {
	switch SortBy(raw) {
	case SortByCreatedAt, SortByTitle, SortByPrice, SortByFeatured:
		return SortBy(raw)
	}
	return SortByCreatedAt
}

// ParseSortOrder validates a raw sort direction, falling back to the default
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortAsc, SortDesc:
		return SortOrder(raw)
	}
	return SortDesc
}

// PriceRange is a min/max pair of prices, always in one currency
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Equal reports whether two ranges hold the same values
func (r PriceRange) Equal(o PriceRange) bool {
	return r.Min.Equal(o.Min) && r.Max.Equal(o.Max)
}

// FilterState is the canonical filter object driving rendering.
// MinPrice and MaxPrice are always expressed in the currently selected
// display currency; invariant: 0 <= MinPrice <= MaxPrice <= bounds.Max.
type FilterState struct {
	Search     string
	CategoryID uuid.UUID // uuid.Nil when no category is selected
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	Featured   bool
	InStock    bool
	SortBy     SortBy
	SortOrder  SortOrder
}

// DefaultFilter returns the filter a fresh listing starts with
func DefaultFilter(b Bounds) FilterState {
	return FilterState{
		MinPrice:  decimal.Zero,
		MaxPrice:  b.DefaultMax,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// Range returns the filter's price range
func (f FilterState) Range() PriceRange {
	return PriceRange{Min: f.MinPrice, Max: f.MaxPrice}
}

// WithRange returns a copy of the filter with the given price range
func (f FilterState) WithRange(r PriceRange) FilterState {
	f.MinPrice = r.Min
	f.MaxPrice = r.Max
	return f
}

// Equal reports whether two filters are logically identical
func (f FilterState) Equal(o FilterState) bool {
	return f.Search == o.Search &&
		f.CategoryID == o.CategoryID &&
		f.MinPrice.Equal(o.MinPrice) &&
		f.MaxPrice.Equal(o.MaxPrice) &&
		f.Featured == o.Featured &&
		f.InStock == o.InStock &&
		f.SortBy == o.SortBy &&
		f.SortOrder == o.SortOrder
}

// ClampRange reorders and clamps a range into the bounds: Min is
// clamped to [0, bounds.Max], Max to [Min, bounds.Max]. Transformations
// that produce Min > Max are corrected here, never surfaced.
func ClampRange(r PriceRange, b Bounds) PriceRange {
	min, max := r.Min, r.Max
	if min.GreaterThan(max) {
		min, max = max, min
	}
	if min.IsNegative() {
		min = decimal.Zero
	}
	if min.GreaterThan(b.Max) {
		min = b.Max
	}
	if max.LessThan(min) {
		max = min
	}
	if max.GreaterThan(b.Max) {
		max = b.Max
	}
	return PriceRange{Min: min, Max: max}
}

// NormalizeRange clamps a range into the bounds and enforces the
// minimum handle separation of one step. If the result is still
// degenerate the safe default range [0, DefaultMax] is returned.
// Applying NormalizeRange twice yields the same result as applying it
// once.
func NormalizeRange(r PriceRange, b Bounds) PriceRange {
	clamped := ClampRange(r, b)

	if clamped.Max.Sub(clamped.Min).LessThan(b.Step) {
		raised := clamped.Min.Add(b.Step)
		if raised.GreaterThan(b.Max) {
			raised = b.Max
		}
		clamped.Max = raised
		if clamped.Max.Sub(clamped.Min).LessThan(b.Step) {
			return DefaultRange(b)
		}
	}

	return clamped
}
