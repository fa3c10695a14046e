package listing

import (
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"go.uber.org/zap"
)

// reconcileRange converts a live price range from the previous display
// currency into the new one. Every input is passed explicitly; the
// function never reads session state. Bounds are re-resolved for the
// new currency, each converted bound is rounded to 2 decimal places,
// clamped into the new bounds with the minimum handle separation of
// one step enforced, and a degenerate or failed conversion resolves to
// the safe default range. Conversion errors are logged, never
// propagated.
func reconcileRange(from, to currency.Code, live listing.PriceRange, rates currency.RateTable, log *zap.Logger) listing.PriceRange {
	bounds := listing.ResolveBounds(to)

	min, err := currency.Convert(live.Min, from, to, rates)
	if err != nil {
		log.Warn("currency reconciliation failed, using default range",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return listing.DefaultRange(bounds)
	}
	max, err := currency.Convert(live.Max, from, to, rates)
	if err != nil {
		log.Warn("currency reconciliation failed, using default range",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return listing.DefaultRange(bounds)
	}

	converted := listing.PriceRange{Min: min.Round(2), Max: max.Round(2)}
	return listing.NormalizeRange(converted, bounds)
}
