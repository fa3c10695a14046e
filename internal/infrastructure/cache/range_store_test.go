package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func storedRange(min, max int64) listing.PriceRange {
	return listing.PriceRange{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

func TestInMemoryRangeStore_RoundTrip(t *testing.T) {
	store := NewInMemoryRangeStore()
	ctx := context.Background()

	got, err := store.Load(ctx, currency.USD)
	require.NoError(t, err)
	assert.Nil(t, got, "missing entry loads as nil")

	require.NoError(t, store.Save(ctx, currency.USD, storedRange(10, 50)))

	got, err = store.Load(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(storedRange(10, 50)))

	other, err := store.Load(ctx, currency.LKR)
	require.NoError(t, err)
	assert.Nil(t, other, "entries are per currency")

	require.NoError(t, store.Clear(ctx, currency.USD))
	got, err = store.Load(ctx, currency.USD)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoredRangeWireFormat(t *testing.T) {
	payload, err := encodeStoredRange(storedRange(5000, 20000))
	require.NoError(t, err)
	assert.Equal(t, `[5000,20000]`, string(payload))

	var nums [2]float64
	require.NoError(t, json.Unmarshal(payload, &nums), "persisted value is a numeric array")

	r := decodeStoredRange(string(payload), currency.LKR)
	require.NotNil(t, r)
	assert.True(t, r.Equal(storedRange(5000, 20000)))
}

func TestDecodeStoredRange(t *testing.T) {
	t.Run("numeric array", func(t *testing.T) {
		r := decodeStoredRange(`[10,50]`, currency.USD)
		require.NotNil(t, r)
		assert.True(t, r.Equal(storedRange(10, 50)))
	})

	t.Run("fractional bounds", func(t *testing.T) {
		r := decodeStoredRange(`[16.67,66.67]`, currency.USD)
		require.NotNil(t, r)
		assert.True(t, r.Min.Equal(decimal.RequireFromString("16.67")))
		assert.True(t, r.Max.Equal(decimal.RequireFromString("66.67")))
	})

	t.Run("legacy string array", func(t *testing.T) {
		r := decodeStoredRange(`["10","50"]`, currency.USD)
		require.NotNil(t, r)
		assert.True(t, r.Equal(storedRange(10, 50)))
	})

	t.Run("clamps into current bounds", func(t *testing.T) {
		r := decodeStoredRange(`["10","900"]`, currency.USD)
		require.NotNil(t, r)
		assert.True(t, r.Max.Equal(listing.ResolveBounds(currency.USD).Max))
	})

	t.Run("malformed json", func(t *testing.T) {
		assert.Nil(t, decodeStoredRange(`{"min":10}`, currency.USD))
		assert.Nil(t, decodeStoredRange(`not json`, currency.USD))
	})

	t.Run("non-numeric bounds", func(t *testing.T) {
		assert.Nil(t, decodeStoredRange(`["ten","50"]`, currency.USD))
		assert.Nil(t, decodeStoredRange(`["10",""]`, currency.USD))
	})
}

func TestDebouncedRangeStore_CoalescesSaves(t *testing.T) {
	inner := NewInMemoryRangeStore()
	store := NewDebouncedRangeStore(inner, 15*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, currency.USD, storedRange(10, 50)))
	require.NoError(t, store.Save(ctx, currency.USD, storedRange(20, 60)))
	require.NoError(t, store.Save(ctx, currency.USD, storedRange(30, 70)))

	got, err := inner.Load(ctx, currency.USD)
	require.NoError(t, err)
	assert.Nil(t, got, "nothing is written before the window elapses")

	time.Sleep(80 * time.Millisecond)

	got, err = inner.Load(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(storedRange(30, 70)), "only the settled value is written")
}

func TestDebouncedRangeStore_LoadReadsThroughPending(t *testing.T) {
	inner := NewInMemoryRangeStore()
	store := NewDebouncedRangeStore(inner, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, currency.USD, storedRange(10, 50)))

	got, err := store.Load(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(storedRange(10, 50)))
}

func TestDebouncedRangeStore_ClearCancelsPending(t *testing.T) {
	inner := NewInMemoryRangeStore()
	store := NewDebouncedRangeStore(inner, 15*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, inner.Save(ctx, currency.USD, storedRange(5, 25)))
	require.NoError(t, store.Save(ctx, currency.USD, storedRange(10, 50)))
	require.NoError(t, store.Clear(ctx, currency.USD))

	time.Sleep(80 * time.Millisecond)

	got, err := inner.Load(ctx, currency.USD)
	require.NoError(t, err)
	assert.Nil(t, got, "clear must drop both the queued and the stored value")
}

func TestDebouncedRangeStore_FlushWritesImmediately(t *testing.T) {
	inner := NewInMemoryRangeStore()
	store := NewDebouncedRangeStore(inner, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, currency.USD, storedRange(10, 50)))
	require.NoError(t, store.Save(ctx, currency.LKR, storedRange(3000, 15000)))

	store.Flush(ctx)

	got, err := inner.Load(ctx, currency.USD)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(storedRange(10, 50)))

	got, err = inner.Load(ctx, currency.LKR)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(storedRange(3000, 15000)))
}
