package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/listing"
)

// ProductQuery carries the assembled filter parameters for a listing
// query. MinPrice and MaxPrice are in the base currency; nil means the
// bound is not applied.
type ProductQuery struct {
	Page      int
	Limit     int
	Search    string
	Category  uuid.UUID // uuid.Nil means no category filter
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Featured  bool
	InStock   bool
	SortBy    listing.SortBy
	SortOrder listing.SortOrder
}

// Equal reports whether two queries would fetch the same page.
// Stale in-flight responses are discarded by comparing against the
// query that produced them.
func (q ProductQuery) Equal(o ProductQuery) bool {
	return q.Page == o.Page &&
		q.Limit == o.Limit &&
		q.Search == o.Search &&
		q.Category == o.Category &&
		decimalPtrEqual(q.MinPrice, o.MinPrice) &&
		decimalPtrEqual(q.MaxPrice, o.MaxPrice) &&
		q.Featured == o.Featured &&
		q.InStock == o.InStock &&
		q.SortBy == o.SortBy &&
		q.SortOrder == o.SortOrder
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Pagination describes the position of a page within the full result
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ProductPage is one page of listing results
type ProductPage struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ProductQueryExecutor fetches a filtered, paginated product list.
// All prices in the query are in the base currency.
type ProductQueryExecutor interface {
	Query(ctx context.Context, q ProductQuery) (ProductPage, error)
}

// CategoryRepository provides access to categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindActive(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, category *Category) error
}

// ProductRepository provides write access to products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRefs converts categories to the listing's resolution view
func CategoryRefs(categories []Category) []listing.CategoryRef {
	refs := make([]listing.CategoryRef, 0, len(categories))
	for _, c := range categories {
		refs = append(refs, listing.CategoryRef{ID: c.ID, Slug: c.Slug})
	}
	return refs
}
