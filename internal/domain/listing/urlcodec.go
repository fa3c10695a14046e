package listing

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
)

// Canonical query parameter names. Prices are always serialized in the
// base currency so a shared URL is currency independent.
const (
	ParamPage     = "page"
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamFeatured = "featured"
	ParamInStock  = "inStock"
	ParamSort     = "sort"
	ParamOrder    = "order"
)

// CategoryRef is the listing's view of a category, enough to resolve
// the category query parameter by slug or id.
type CategoryRef struct {
	ID   uuid.UUID
	Slug string
}

// ResolveCategory resolves a raw category parameter against the loaded
// category list. An empty value, an unknown slug, or an id that is not
// in the list resolves to uuid.Nil; callers re-resolve once the list
// arrives.
func ResolveCategory(refs []CategoryRef, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	for _, ref := range refs {
		if ref.Slug == raw {
			return ref.ID
		}
	}
	if id, err := uuid.Parse(raw); err == nil {
		for _, ref := range refs {
			if ref.ID == id {
				return ref.ID
			}
		}
	}
	return uuid.Nil
}

// categorySlug maps a category id back to its slug for encoding,
// falling back to the id string when the list does not contain it
func categorySlug(refs []CategoryRef, id uuid.UUID) string {
	for _, ref := range refs {
		if ref.ID == id {
			return ref.Slug
		}
	}
	return id.String()
}

// HasPriceParams reports whether the query carries explicit prices
func HasPriceParams(q url.Values) bool {
	return q.Has(ParamMinPrice) || q.Has(ParamMaxPrice)
}

// DecodePage parses the page parameter, defaulting to 1
func DecodePage(q url.Values) int {
	page, err := strconv.Atoi(q.Get(ParamPage))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// DecodeFilter rebuilds the canonical filter from a query string.
// Non-price fields are parsed directly; the category is resolved
// against the loaded category list. Explicit URL prices are converted
// from base currency to the display currency, rounded to 2 decimal
// places and clamped into the display bounds. When the URL carries no
// price parameters the live range is preserved untouched, so an
// in-progress selection is never silently reset.
//
// The returned filter is always usable; a non-nil error only reports
// that prices could not be decoded and the live range was kept.
func DecodeFilter(q url.Values, cats []CategoryRef, display currency.Code, rates currency.RateTable, live PriceRange) (FilterState, error) {
	f := FilterState{
		Search:     q.Get(ParamSearch),
		CategoryID: ResolveCategory(cats, q.Get(ParamCategory)),
		Featured:   q.Get(ParamFeatured) == "true",
		InStock:    q.Get(ParamInStock) == "true",
		SortBy:     ParseSortBy(q.Get(ParamSort)),
		SortOrder:  ParseSortOrder(q.Get(ParamOrder)),
	}

	if !HasPriceParams(q) {
		return f.WithRange(live), nil
	}

	minBase, minOK := parsePrice(q.Get(ParamMinPrice))
	maxBase, maxOK := parsePrice(q.Get(ParamMaxPrice))
	if !minOK && !maxOK {
		return f.WithRange(live), fmt.Errorf("unparseable price parameters %q/%q", q.Get(ParamMinPrice), q.Get(ParamMaxPrice))
	}
	if !minOK {
		minBase = decimal.Zero
	}
	if !maxOK {
		maxBase = ResolveBounds(currency.BaseCode).DefaultMax
	}

	min, err := currency.Convert(minBase, currency.BaseCode, display, rates)
	if err != nil {
		return f.WithRange(live), err
	}
	max, err := currency.Convert(maxBase, currency.BaseCode, display, rates)
	if err != nil {
		return f.WithRange(live), err
	}

	r := PriceRange{Min: min.Round(2), Max: max.Round(2)}
	return f.WithRange(ClampRange(r, ResolveBounds(display))), nil
}

// EncodeFilter serializes the filter to query parameters. Fields at
// their default value are omitted, except prices: when includePrices
// is set both bounds are encoded, a zero MinPrice included, converted
// from the display currency to base currency and rounded to the
// backend's integer unit.
//
// On a conversion failure the price parameters are omitted and the
// error returned alongside the otherwise complete query.
func EncodeFilter(f FilterState, cats []CategoryRef, display currency.Code, rates currency.RateTable, includePrices bool) (url.Values, error) {
	q := url.Values{}

	if f.Search != "" {
		q.Set(ParamSearch, f.Search)
	}
	if f.CategoryID != uuid.Nil {
		q.Set(ParamCategory, categorySlug(cats, f.CategoryID))
	}
	if f.Featured {
		q.Set(ParamFeatured, "true")
	}
	if f.InStock {
		q.Set(ParamInStock, "true")
	}
	if f.SortBy != SortByCreatedAt {
		q.Set(ParamSort, string(f.SortBy))
	}
	if f.SortOrder != SortDesc {
		q.Set(ParamOrder, string(f.SortOrder))
	}

	if !includePrices {
		return q, nil
	}

	minBase, err := currency.Convert(f.MinPrice, display, currency.BaseCode, rates)
	if err != nil {
		return q, err
	}
	maxBase, err := currency.Convert(f.MaxPrice, display, currency.BaseCode, rates)
	if err != nil {
		return q, err
	}

	q.Set(ParamMinPrice, minBase.Round(0).String())
	q.Set(ParamMaxPrice, maxBase.Round(0).String())
	return q, nil
}

// parsePrice parses a raw price parameter into a decimal
func parsePrice(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
