package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CreativeUnicorns/shopstate"
)

// SortKey orders a product listing.
type SortKey string

const (
	SortRelevant       SortKey = "relevant"
	SortPopular        SortKey = "popular"
	SortPriceLowToHigh SortKey = "priceLowToHigh"
	SortPriceHighToLow SortKey = "priceHighToLow"
	SortRating         SortKey = "rating"
	SortNewest         SortKey = "newest"
)

// DefaultPageSize is used by Paginate when no limit is given.
const DefaultPageSize = 20

var sortKeys = map[SortKey]bool{
	SortRelevant:       true,
	SortPopular:        true,
	SortPriceLowToHigh: true,
	SortPriceHighToLow: true,
	SortRating:         true,
	SortNewest:         true,
}

// ParseSortKey validates s. The empty string parses as SortNewest.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNewest, nil
	}
	k := SortKey(s)
	if !sortKeys[k] {
		return "", fmt.Errorf("%w: unknown sort %q", shopstate.ErrInvalidInput, s)
	}
	return k, nil
}

// SearchProducts returns the products matching any whitespace-separated term
// of query, case-insensitively, in name, description or brand name. A blank
// query matches nothing.
func SearchProducts(products []shopstate.Product, query string) []shopstate.Product {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var out []shopstate.Product
	for _, p := range products {
		text := searchableText(p)
		for _, term := range terms {
			if strings.Contains(text, term) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func searchableText(p shopstate.Product) string {
	brand := ""
	if p.Brand != nil {
		brand = p.Brand.Name
	}
	return strings.ToLower(p.Name + " " + p.Description + " " + brand)
}

// SortProducts returns a sorted copy of products. Relevance uses review
// count as its proxy, prices compare the first variant, and SortNewest or an
// unknown key keeps the input order. Ties keep their input order.
func SortProducts(products []shopstate.Product, key SortKey) []shopstate.Product {
	out := append([]shopstate.Product(nil), products...)

	var less func(a, b shopstate.Product) bool
	switch key {
	case SortRelevant, SortPopular:
		less = func(a, b shopstate.Product) bool { return a.ReviewCount > b.ReviewCount }
	case SortPriceLowToHigh:
		less = func(a, b shopstate.Product) bool { return a.Price() < b.Price() }
	case SortPriceHighToLow:
		less = func(a, b shopstate.Product) bool { return a.Price() > b.Price() }
	case SortRating:
		less = func(a, b shopstate.Product) bool { return a.Rating > b.Rating }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ProductsInCategory returns the products filed under category itself or
// under one of its direct children.
func ProductsInCategory(products []shopstate.Product, category shopstate.Category) []shopstate.Product {
	ids := map[int64]bool{category.ID: true}
	for _, child := range category.Children {
		ids[child.ID] = true
	}

	var out []shopstate.Product
	for _, p := range products {
		if ids[p.CategoryID] {
			out = append(out, p)
		}
	}
	return out
}

// FindCategoryBySlug searches the tree depth-first.
func FindCategoryBySlug(categories []shopstate.Category, slug string) (shopstate.Category, bool) {
	return findCategory(categories, func(c shopstate.Category) bool { return c.Slug == slug })
}

// FindCategoryByID searches the tree depth-first.
func FindCategoryByID(categories []shopstate.Category, id int64) (shopstate.Category, bool) {
	return findCategory(categories, func(c shopstate.Category) bool { return c.ID == id })
}

func findCategory(categories []shopstate.Category, match func(shopstate.Category) bool) (shopstate.Category, bool) {
	for _, c := range categories {
		if match(c) {
			return c, true
		}
		if found, ok := findCategory(c.Children, match); ok {
			return found, true
		}
	}
	return shopstate.Category{}, false
}

// ParentCategory returns the category whose direct children include childID.
func ParentCategory(categories []shopstate.Category, childID int64) (shopstate.Category, bool) {
	for _, c := range categories {
		for _, child := range c.Children {
			if child.ID == childID {
				return c, true
			}
		}
		if parent, ok := ParentCategory(c.Children, childID); ok {
			return parent, true
		}
	}
	return shopstate.Category{}, false
}

// Paginate returns page (1-based) of products with limit entries per page.
// A page past the end is empty.
func Paginate(products []shopstate.Product, page, limit int) ProductPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	total := len(products)
	result := ProductPage{
		Products:   []shopstate.Product{},
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}

	start := (page - 1) * limit
	if start >= total {
		return result
	}
	end := min(start+limit, total)
	result.Products = append(result.Products, products[start:end]...)
	return result
}
