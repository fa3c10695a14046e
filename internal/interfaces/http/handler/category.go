package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryHandler serves the storefront category list
type CategoryHandler struct {
	BaseHandler
	categories catalog.CategoryRepository
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories catalog.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// RegisterRoutes registers category routes
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.List)
	rg.GET("/categories/:slug", h.Get)
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
	CreatedAt string `json:"created_at"`
}

// List handles GET /categories, returning active categories in
// display order
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.FindActive(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, toCategoryResponse(cat))
	}

	h.Success(c, items)
}

// Get handles GET /categories/:slug
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toCategoryResponse(*category))
}

func toCategoryResponse(cat catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Slug:      cat.Slug,
		SortOrder: cat.SortOrder,
		CreatedAt: cat.CreatedAt.Format(time.RFC3339),
	}
}
