package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func reconcileRates() currency.RateTable {
	return currency.RateTable{
		currency.LKR: decimal.NewFromInt(1),
		currency.USD: decimal.NewFromInt(300),
	}
}

func TestReconcileRange_USDToLKR(t *testing.T) {
	live := listing.PriceRange{
		Min: decimal.NewFromInt(10),
		Max: decimal.NewFromInt(50),
	}

	got := reconcileRange(currency.USD, currency.LKR, live, reconcileRates(), zap.NewNop())

	assert.True(t, got.Min.Equal(decimal.NewFromInt(3000)), "got min %s", got.Min)
	assert.True(t, got.Max.Equal(decimal.NewFromInt(15000)), "got max %s", got.Max)
}

func TestReconcileRange_LKRToUSD(t *testing.T) {
	live := listing.PriceRange{
		Min: decimal.NewFromInt(5000),
		Max: decimal.NewFromInt(20000),
	}

	got := reconcileRange(currency.LKR, currency.USD, live, reconcileRates(), zap.NewNop())

	assert.Equal(t, "16.67", got.Min.StringFixed(2))
	assert.Equal(t, "66.67", got.Max.StringFixed(2))
}

func TestReconcileRange_ClampsIntoNewBounds(t *testing.T) {
	// 60000 LKR converts to 200 USD, above the fine-tier maximum
	live := listing.PriceRange{
		Min: decimal.NewFromInt(0),
		Max: decimal.NewFromInt(60000),
	}

	got := reconcileRange(currency.LKR, currency.USD, live, reconcileRates(), zap.NewNop())
	bounds := listing.ResolveBounds(currency.USD)

	assert.True(t, got.Max.Equal(bounds.Max), "got max %s", got.Max)
}

func TestReconcileRange_UnknownRateFallsBackToDefault(t *testing.T) {
	live := listing.PriceRange{
		Min: decimal.NewFromInt(10),
		Max: decimal.NewFromInt(50),
	}

	got := reconcileRange(currency.USD, currency.EUR, live, reconcileRates(), zap.NewNop())

	assert.True(t, got.Equal(listing.DefaultRange(listing.ResolveBounds(currency.EUR))))
}

func TestReconcileRange_SameCurrencyIsIdentity(t *testing.T) {
	live := listing.PriceRange{
		Min: decimal.NewFromInt(10),
		Max: decimal.NewFromInt(50),
	}

	got := reconcileRange(currency.USD, currency.USD, live, currency.RateTable{}, zap.NewNop())

	assert.True(t, got.Equal(live))
}
