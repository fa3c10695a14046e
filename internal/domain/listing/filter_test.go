package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/stretchr/testify/assert"
)

func rangeOf(min, max float64) PriceRange {
	return PriceRange{Min: decimal.NewFromFloat(min), Max: decimal.NewFromFloat(max)}
}

func TestClampRange_ReordersAndClamps(t *testing.T) {
	b := ResolveBounds(currency.LKR)

	tests := []struct {
		name string
		in   PriceRange
		want PriceRange
	}{
		{"inverted bounds are reordered", rangeOf(20000, 5000), rangeOf(5000, 20000)},
		{"negative min clamps to zero", rangeOf(-100, 1000), rangeOf(0, 1000)},
		{"max above cap clamps to cap", rangeOf(0, 99999), rangeOf(0, 30000)},
		{"both above cap collapse at cap", rangeOf(50000, 99999), rangeOf(30000, 30000)},
		{"in-range values pass through", rangeOf(5000, 20000), rangeOf(5000, 20000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRange(tt.in, b)
			assert.True(t, tt.want.Equal(got), "got [%s, %s]", got.Min, got.Max)
		})
	}
}

func TestNormalizeRange_EnforcesStepSeparation(t *testing.T) {
	b := ResolveBounds(currency.LKR)

	got := NormalizeRange(rangeOf(5000, 5100), b)

	assert.Equal(t, "5000", got.Min.String())
	assert.Equal(t, "5500", got.Max.String())
}

func TestNormalizeRange_DegenerateFallsBackToDefault(t *testing.T) {
	b := ResolveBounds(currency.LKR)

	// Pinned at the cap there is no room for a full step
	got := NormalizeRange(rangeOf(30000, 30000), b)

	assert.True(t, DefaultRange(b).Equal(got))
}

func TestNormalizeRange_Idempotent(t *testing.T) {
	inputs := []PriceRange{
		rangeOf(5000, 20000),
		rangeOf(20000, 5000),
		rangeOf(-10, 99999),
		rangeOf(30000, 30000),
		rangeOf(12.34, 12.35),
	}

	for _, code := range []currency.Code{currency.LKR, currency.USD} {
		b := ResolveBounds(code)
		for _, in := range inputs {
			once := NormalizeRange(in, b)
			twice := NormalizeRange(once, b)
			assert.True(t, once.Equal(twice), "%s: [%s,%s] -> [%s,%s] -> [%s,%s]",
				code, in.Min, in.Max, once.Min, once.Max, twice.Min, twice.Max)
		}
	}
}

func TestFilterState_Equal(t *testing.T) {
	b := ResolveBounds(currency.LKR)
	f := DefaultFilter(b)

	assert.True(t, f.Equal(DefaultFilter(b)))

	changed := f
	changed.Search = "lamp"
	assert.False(t, f.Equal(changed))

	// Decimal equality must compare values, not representations
	scaled := f
	scaled.MaxPrice = decimal.RequireFromString("30000.00")
	assert.True(t, f.Equal(scaled))
}
