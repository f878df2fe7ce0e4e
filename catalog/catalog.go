// Package catalog provides the read-only product catalog the stores take
// product snapshots from: a client for the remote catalog API, a local JSON
// file source, and the search, sort and category helpers the storefront
// pages apply to product lists.
package catalog

import (
	"context"
	"errors"

	"github.com/CreativeUnicorns/shopstate"
)

// ErrNotFound is returned when a product or category does not exist.
var ErrNotFound = errors.New("catalog: not found")

// DefaultAPIURL is the catalog API used when none is configured.
const DefaultAPIURL = "https://api.meshur.co"

// Source is a catalog backend.
type Source interface {
	Products(ctx context.Context, q ProductQuery) (ProductPage, error)
	Product(ctx context.Context, id int64) (shopstate.Product, error)
	ProductBySlug(ctx context.Context, slug string) (shopstate.Product, error)
	Search(ctx context.Context, query string, q SearchQuery) (ProductPage, error)
	Categories(ctx context.Context) ([]shopstate.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (shopstate.Category, error)
	Brands(ctx context.Context) ([]shopstate.Brand, error)
}

// ProductQuery filters and pages a product listing. Zero fields are omitted.
type ProductQuery struct {
	Page       int
	Limit      int
	CategoryID int64
	BrandID    int64
	SortBy     SortKey
}

// SearchQuery pages a search result. Zero fields are omitted.
type SearchQuery struct {
	Page  int
	Limit int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []shopstate.Product `json:"products"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}
