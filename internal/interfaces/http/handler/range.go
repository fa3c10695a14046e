package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RangeHandler exposes the persisted per-currency price range so a
// storefront client can restore its slider across devices
type RangeHandler struct {
	BaseHandler
	store listing.RangeStore
}

// NewRangeHandler creates a new RangeHandler
func NewRangeHandler(store listing.RangeStore) *RangeHandler {
	return &RangeHandler{store: store}
}

// RegisterRoutes registers range routes
func (h *RangeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ranges := rg.Group("/listing/range")
	{
		ranges.GET("/:currency", h.Get)
		ranges.PUT("/:currency", h.Put)
		ranges.DELETE("/:currency", h.Delete)
	}
}

// RangeResponse represents a persisted price range
type RangeResponse struct {
	Currency string `json:"currency"`
	Min      string `json:"min"`
	Max      string `json:"max"`
}

// SaveRangeRequest is the body for PUT /listing/range/:currency
type SaveRangeRequest struct {
	Min string `json:"min" binding:"required"`
	Max string `json:"max" binding:"required"`
}

// Get handles GET /listing/range/:currency. A currency with nothing
// stored returns the default range for its bounds.
func (h *RangeHandler) Get(c *gin.Context) {
	code, ok := h.currencyParam(c)
	if !ok {
		return
	}

	stored, err := h.store.Load(c.Request.Context(), code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	bounds := listing.ResolveBounds(code)
	r := listing.DefaultRange(bounds)
	if stored != nil {
		r = listing.NormalizeRange(*stored, bounds)
	}

	h.Success(c, RangeResponse{
		Currency: code.String(),
		Min:      r.Min.String(),
		Max:      r.Max.String(),
	})
}

// Put handles PUT /listing/range/:currency, normalizing the submitted
// range into the currency's bounds before storing it
func (h *RangeHandler) Put(c *gin.Context) {
	code, ok := h.currencyParam(c)
	if !ok {
		return
	}

	var req SaveRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	min, err := decimal.NewFromString(req.Min)
	if err != nil {
		h.BadRequest(c, "min is not a decimal number")
		return
	}
	max, err := decimal.NewFromString(req.Max)
	if err != nil {
		h.BadRequest(c, "max is not a decimal number")
		return
	}

	r := listing.NormalizeRange(listing.PriceRange{Min: min, Max: max}, listing.ResolveBounds(code))
	if err := h.store.Save(c.Request.Context(), code, r); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RangeResponse{
		Currency: code.String(),
		Min:      r.Min.String(),
		Max:      r.Max.String(),
	})
}

// Delete handles DELETE /listing/range/:currency
func (h *RangeHandler) Delete(c *gin.Context) {
	code, ok := h.currencyParam(c)
	if !ok {
		return
	}

	if err := h.store.Clear(c.Request.Context(), code); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *RangeHandler) currencyParam(c *gin.Context) (currency.Code, bool) {
	raw := c.Param("currency")
	code := currency.Code(strings.ToUpper(raw))
	if !code.Known() {
		h.ErrorWithCode(c, dto.ErrCodeUnknownCurrency, "Unsupported currency: "+raw)
		return "", false
	}
	return code, true
}
