package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPProvider(Config{URL: srv.URL}, zap.NewNop())
}

func TestHTTPProvider_Fetch(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"LKR","rates":{"USD":0.004,"EUR":0.005}}`))
	})

	table, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, table[currency.BaseCode].Equal(decimal.NewFromInt(1)))
	assert.True(t, table[currency.USD].Equal(decimal.NewFromInt(250)), "got %s", table[currency.USD])
	assert.True(t, table[currency.EUR].Equal(decimal.NewFromInt(200)), "got %s", table[currency.EUR])
}

func TestHTTPProvider_SkipsNonPositiveRates(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"USD":0.004,"EUR":0,"GBP":-1}}`))
	})

	table, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	_, hasEUR := table[currency.EUR]
	_, hasGBP := table[currency.GBP]
	assert.False(t, hasEUR)
	assert.False(t, hasGBP)
	assert.True(t, table[currency.USD].Equal(decimal.NewFromInt(250)))
}

func TestHTTPProvider_UpstreamErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := provider.Fetch(context.Background())
		assert.True(t, errors.Is(err, shared.ErrRatesUnavailable))
	})

	t.Run("missing rates object", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"base":"LKR"}`))
		})

		_, err := provider.Fetch(context.Background())
		assert.True(t, errors.Is(err, shared.ErrRatesUnavailable))
	})

	t.Run("empty rates object", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"rates":{}}`))
		})

		_, err := provider.Fetch(context.Background())
		assert.True(t, errors.Is(err, shared.ErrRatesUnavailable))
	})
}
