package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatesEngine(rates RatesSource) *gin.Engine {
	engine := gin.New()
	NewRatesHandler(rates).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestRatesGet(t *testing.T) {
	engine := newRatesEngine(&stubRates{table: currency.RateTable{
		currency.LKR: decimal.NewFromInt(1),
		currency.USD: decimal.NewFromInt(300),
	}})

	w := doRequest(engine, http.MethodGet, "/api/v1/rates")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data RatesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "LKR", resp.Data.Base)
	assert.Equal(t, "300", resp.Data.Rates["USD"])
	assert.Equal(t, "1", resp.Data.Rates["LKR"])
}

func TestRatesGet_Unavailable(t *testing.T) {
	engine := newRatesEngine(&stubRates{err: shared.ErrRatesUnavailable})

	w := doRequest(engine, http.MethodGet, "/api/v1/rates")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
