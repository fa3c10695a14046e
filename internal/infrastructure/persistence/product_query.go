package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/listing"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortColumns maps listing sort keys to database columns
var sortColumns = map[listing.SortBy]string{
	listing.SortByCreatedAt: "created_at",
	listing.SortByTitle:     "title",
	listing.SortByPrice:     "price",
	listing.SortByFeatured:  "featured",
}

// GormProductQueryExecutor runs listing queries against the products
// table. Only active products are visible; all price bounds are in the
// base currency.
type GormProductQueryExecutor struct {
	db *gorm.DB
}

// NewGormProductQueryExecutor creates a new GormProductQueryExecutor
func NewGormProductQueryExecutor(db *gorm.DB) *GormProductQueryExecutor {
	return &GormProductQueryExecutor{db: db}
}

// Query fetches one page of products matching the assembled filter
func (e *GormProductQueryExecutor) Query(ctx context.Context, q catalog.ProductQuery) (catalog.ProductPage, error) {
	base := e.applyQuery(e.db.WithContext(ctx).Model(&catalog.Product{}), q)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return catalog.ProductPage{}, fmt.Errorf("%w: %v", shared.ErrQueryFailed, err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 12
	}

	column := ValidateSortField(sortColumns[q.SortBy], ProductSortFields, "created_at")
	order := ValidateSortOrder(string(q.SortOrder))

	var products []catalog.Product
	if err := base.
		Order(column + " " + order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return catalog.ProductPage{}, fmt.Errorf("%w: %v", shared.ErrQueryFailed, err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return catalog.ProductPage{
		Items: products,
		Pagination: catalog.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// applyQuery translates the filter parameters to WHERE clauses
func (e *GormProductQueryExecutor) applyQuery(db *gorm.DB, q catalog.ProductQuery) *gorm.DB {
	db = db.Where("status = ?", catalog.ProductStatusActive)

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if q.Category != uuid.Nil {
		db = db.Where("category_id = ?", q.Category)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", q.MaxPrice)
	}
	if q.Featured {
		db = db.Where("featured = ?", true)
	}
	if q.InStock {
		db = db.Where("quantity > ?", 0)
	}

	return db
}

var _ catalog.ProductQueryExecutor = (*GormProductQueryExecutor)(nil)
