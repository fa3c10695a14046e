package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/shared"
)

// RatesHandler exposes the exchange-rate table the storefront prices with
type RatesHandler struct {
	BaseHandler
	rates RatesSource
}

// NewRatesHandler creates a new RatesHandler
func NewRatesHandler(rates RatesSource) *RatesHandler {
	return &RatesHandler{rates: rates}
}

// RegisterRoutes registers rate routes
func (h *RatesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rates", h.Get)
}

// RatesResponse represents the rate table in API responses. Each rate
// is the base-currency value of one unit of the listed currency.
type RatesResponse struct {
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// Get handles GET /rates
func (h *RatesHandler) Get(c *gin.Context) {
	table, err := h.rates.Table(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, shared.ErrRatesUnavailable)
		return
	}

	rates := make(map[string]string, len(table))
	for code, rate := range table {
		rates[code.String()] = rate.String()
	}

	h.Success(c, RatesResponse{
		Base:  currency.BaseCode.String(),
		Rates: rates,
	})
}
