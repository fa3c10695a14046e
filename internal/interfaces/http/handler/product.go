package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	applisting "github.com/storefront/backend/internal/application/listing"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RatesSource serves the current exchange-rate table
type RatesSource interface {
	Table(ctx context.Context) (currency.RateTable, error)
}

// ProductHandler serves the storefront product listing
type ProductHandler struct {
	BaseHandler
	executor   catalog.ProductQueryExecutor
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	rates      RatesSource
	pageSize   int
	log        *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(
	executor catalog.ProductQueryExecutor,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	rates RatesSource,
	pageSize int,
	log *zap.Logger,
) *ProductHandler {
	if pageSize < 1 {
		pageSize = 12
	}
	return &ProductHandler{
		executor:   executor,
		products:   products,
		categories: categories,
		rates:      rates,
		pageSize:   pageSize,
		log:        log,
	}
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:slug", h.Get)
	}
}

// ProductResponse represents a product in API responses. Price is the
// stored base-currency amount; display_price is converted into the
// requested currency.
type ProductResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description,omitempty"`
	Price        string  `json:"price"`
	DisplayPrice string  `json:"display_price"`
	Currency     string  `json:"currency"`
	CategoryID   *string `json:"category_id,omitempty"`
	Featured     bool    `json:"featured"`
	InStock      bool    `json:"in_stock"`
	CreatedAt    string  `json:"created_at"`
}

// List handles GET /products. The query string uses the same
// parameters as a shared listing URL: search, category, minPrice,
// maxPrice (base currency), featured, inStock, sort, order and page,
// plus currency to select the display currency and limit to override
// the page size.
func (h *ProductHandler) List(c *gin.Context) {
	display, ok := h.displayCurrency(c)
	if !ok {
		return
	}

	table, err := h.rates.Table(c.Request.Context())
	if err != nil {
		h.log.Warn("serving listing with default rates", zap.Error(err))
		table = currency.DefaultRates()
	}

	refs, err := h.categoryRefs(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	q := c.Request.URL.Query()
	bounds := listing.ResolveBounds(display)
	filter, decodeErr := listing.DecodeFilter(q, refs, display, table, listing.DefaultRange(bounds))
	if decodeErr != nil {
		h.log.Warn("ignoring unusable price parameters",
			zap.String("query", c.Request.URL.RawQuery),
			zap.Error(decodeErr))
	}

	includePrices := listing.HasPriceParams(q) && decodeErr == nil
	query, convErr := applisting.BuildQuery(filter, listing.DecodePage(q), h.limit(c), display, table, includePrices)
	if convErr != nil {
		h.log.Warn("dropping price bounds from query", zap.Error(convErr))
	}

	page, err := h.executor.Query(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]ProductResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, h.toResponse(p, display, table))
	}

	h.SuccessWithMeta(c, items, dto.Meta{
		Page:  page.Pagination.Page,
		Limit: page.Pagination.Limit,
		Total: page.Pagination.Total,
		Pages: page.Pagination.Pages,
	})
}

// Get handles GET /products/:slug
func (h *ProductHandler) Get(c *gin.Context) {
	display, ok := h.displayCurrency(c)
	if !ok {
		return
	}

	product, err := h.products.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	table, err := h.rates.Table(c.Request.Context())
	if err != nil {
		h.log.Warn("serving product with default rates", zap.Error(err))
		table = currency.DefaultRates()
	}

	h.Success(c, h.toResponse(*product, display, table))
}

// displayCurrency parses the currency query parameter, defaulting to
// the base currency. An unknown code is rejected rather than silently
// priced in base currency.
func (h *ProductHandler) displayCurrency(c *gin.Context) (currency.Code, bool) {
	raw := c.Query("currency")
	if raw == "" {
		return currency.BaseCode, true
	}
	code := currency.Code(strings.ToUpper(raw))
	if !code.Known() {
		h.ErrorWithCode(c, dto.ErrCodeUnknownCurrency, "Unsupported currency: "+raw)
		return "", false
	}
	return code, true
}

func (h *ProductHandler) categoryRefs(ctx context.Context) ([]listing.CategoryRef, error) {
	categories, err := h.categories.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CategoryRefs(categories), nil
}

func (h *ProductHandler) limit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return h.pageSize
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func (h *ProductHandler) toResponse(p catalog.Product, display currency.Code, table currency.RateTable) ProductResponse {
	displayPrice := p.Price
	if converted, err := currency.Convert(p.Price, currency.BaseCode, display, table); err == nil {
		displayPrice = converted.Round(2)
	} else {
		h.log.Warn("price conversion failed", zap.String("product", p.ID.String()), zap.Error(err))
		display = currency.BaseCode
	}

	var categoryID *string
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		categoryID = &id
	}

	return ProductResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		DisplayPrice: displayPrice.StringFixed(2),
		Currency:     display.String(),
		CategoryID:   categoryID,
		Featured:     p.Featured,
		InStock:      p.InStock(),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
