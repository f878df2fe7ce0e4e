package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/CreativeUnicorns/shopstate"
)

// fileData is the layout of a local catalog file. Products and categories use
// the domain JSON shape, not the API wire shape.
type fileData struct {
	Products   []shopstate.Product  `json:"products"`
	Categories []shopstate.Category `json:"categories"`
	Brands     []shopstate.Brand    `json:"brands,omitempty"`
}

// FileSource serves a catalog held in memory, typically loaded from a JSON
// file for offline use.
type FileSource struct {
	data fileData
}

// NewFileSource reads a catalog file of the form
// {"products": [...], "categories": [...], "brands": [...]}.
func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return &FileSource{data: data}, nil
}

// NewMemorySource serves the given products and categories.
func NewMemorySource(products []shopstate.Product, categories []shopstate.Category) *FileSource {
	return &FileSource{data: fileData{Products: products, Categories: categories}}
}

// Products filters by category (including direct children) and brand, then
// sorts and pages.
func (s *FileSource) Products(_ context.Context, q ProductQuery) (ProductPage, error) {
	products := s.data.Products
	if q.CategoryID > 0 {
		category, ok := FindCategoryByID(s.data.Categories, q.CategoryID)
		if !ok {
			category = shopstate.Category{ID: q.CategoryID}
		}
		products = ProductsInCategory(products, category)
	}
	if q.BrandID > 0 {
		var filtered []shopstate.Product
		for _, p := range products {
			if p.BrandID != nil && *p.BrandID == q.BrandID {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	return Paginate(SortProducts(products, q.SortBy), q.Page, q.Limit), nil
}

// Product returns the product with id.
func (s *FileSource) Product(_ context.Context, id int64) (shopstate.Product, error) {
	for _, p := range s.data.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return shopstate.Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
}

// ProductBySlug returns the product with slug.
func (s *FileSource) ProductBySlug(_ context.Context, slug string) (shopstate.Product, error) {
	for _, p := range s.data.Products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return shopstate.Product{}, fmt.Errorf("%w: product %q", ErrNotFound, slug)
}

// Search matches products locally and orders them by relevance.
func (s *FileSource) Search(_ context.Context, query string, q SearchQuery) (ProductPage, error) {
	results := SortProducts(SearchProducts(s.data.Products, query), SortRelevant)
	return Paginate(results, q.Page, q.Limit), nil
}

// Categories returns the category tree.
func (s *FileSource) Categories(context.Context) ([]shopstate.Category, error) {
	return s.data.Categories, nil
}

// CategoryBySlug searches the whole tree.
func (s *FileSource) CategoryBySlug(_ context.Context, slug string) (shopstate.Category, error) {
	c, ok := FindCategoryBySlug(s.data.Categories, slug)
	if !ok {
		return shopstate.Category{}, fmt.Errorf("%w: category %q", ErrNotFound, slug)
	}
	return c, nil
}

// Brands returns the listed brands, or the distinct brands of the products
// ordered by id when the file lists none.
func (s *FileSource) Brands(context.Context) ([]shopstate.Brand, error) {
	if len(s.data.Brands) > 0 {
		return s.data.Brands, nil
	}

	seen := make(map[int64]shopstate.Brand)
	for _, p := range s.data.Products {
		if p.Brand != nil {
			seen[p.Brand.ID] = *p.Brand
		}
	}
	out := make([]shopstate.Brand, 0, len(seen))
	for _, b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Source = (*FileSource)(nil)
