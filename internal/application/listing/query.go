package listing

import (
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
)

// BuildQuery assembles the executor query from the canonical filter.
// Display-currency price bounds are converted to the base currency and
// rounded to whole units; they are included only when the session has
// committed an explicit range. When conversion fails the query is
// returned without price bounds alongside the error, so a broken rate
// table degrades to an unfiltered listing instead of an empty one.
func BuildQuery(f listing.FilterState, page, limit int, display currency.Code, rates currency.RateTable, includePrices bool) (catalog.ProductQuery, error) {
	q := catalog.ProductQuery{
		Page:      page,
		Limit:     limit,
		Search:    f.Search,
		Category:  f.CategoryID,
		Featured:  f.Featured,
		InStock:   f.InStock,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
	}

	if !includePrices {
		return q, nil
	}

	min, err := currency.Convert(f.MinPrice, display, currency.BaseCode, rates)
	if err != nil {
		return q, err
	}
	max, err := currency.Convert(f.MaxPrice, display, currency.BaseCode, rates)
	if err != nil {
		return q, err
	}

	min = min.Round(0)
	max = max.Round(0)
	q.MinPrice = &min
	q.MaxPrice = &max
	return q, nil
}
