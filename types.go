// Package shopstate defines the core types used by the commerce state stores.
package shopstate

import (
	"math"
	"strconv"
)

// Product is a catalog product snapshot. The stores treat it as opaque data:
// a product held in the cart or in favorites is a copy taken when it was added,
// and later catalog changes do not update it.
// JSON tags follow the catalog API's camelCase field names.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	CategoryID  int64            `json:"categoryId"`
	BrandID     *int64           `json:"brandId"`
	Brand       *Brand           `json:"brand,omitempty"`
	Variants    []ProductVariant `json:"variants"`
	Images      []ProductImage   `json:"images"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

// Key returns the string form of the product id used as the favorites key.
func (p Product) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// Variant returns the variant with the given id.
func (p Product) Variant(id int64) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// DefaultVariant returns the first variant, which is what the storefront
// shows and prices a product by.
func (p Product) DefaultVariant() (ProductVariant, bool) {
	if len(p.Variants) == 0 {
		return ProductVariant{}, false
	}
	return p.Variants[0], true
}

// Price is the default variant's price, or 0 for a product without variants.
func (p Product) Price() float64 {
	v, ok := p.DefaultVariant()
	if !ok {
		return 0
	}
	return v.Price
}

// clone returns a deep copy so that a stored snapshot cannot be changed
// through slices shared with the caller.
func (p Product) clone() Product {
	out := p
	if p.BrandID != nil {
		id := *p.BrandID
		out.BrandID = &id
	}
	if p.Brand != nil {
		b := *p.Brand
		out.Brand = &b
	}
	if p.Variants != nil {
		out.Variants = make([]ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			out.Variants[i] = v.clone()
		}
	}
	if p.Images != nil {
		out.Images = append([]ProductImage(nil), p.Images...)
	}
	return out
}

// ProductVariant is a purchasable variant of a product (size, colour, ...).
type ProductVariant struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"productId"`
	Price         float64         `json:"price"`
	OriginalPrice *float64        `json:"originalPrice,omitempty"`
	Stock         int             `json:"stock"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode"`
	Options       []VariantOption `json:"options"`
	Thumbnails    []ProductImage  `json:"thumbnails"`
}

// InStock reports whether the variant has stock left.
func (v ProductVariant) InStock() bool {
	return v.Stock > 0
}

// DiscountPercent returns the rounded discount of Price relative to OriginalPrice.
// It is 0 when there is no original price or the variant is not discounted.
func (v ProductVariant) DiscountPercent() int {
	if v.OriginalPrice == nil {
		return 0
	}
	orig := *v.OriginalPrice
	if orig <= 0 || v.Price >= orig {
		return 0
	}
	return int(math.Round((orig - v.Price) / orig * 100))
}

func (v ProductVariant) clone() ProductVariant {
	out := v
	if v.OriginalPrice != nil {
		p := *v.OriginalPrice
		out.OriginalPrice = &p
	}
	if v.Options != nil {
		out.Options = append([]VariantOption(nil), v.Options...)
	}
	if v.Thumbnails != nil {
		out.Thumbnails = append([]ProductImage(nil), v.Thumbnails...)
	}
	return out
}

// VariantOption is a single option of a variant, e.g. Size: L.
type VariantOption struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// ProductImage references an image of a product or variant.
type ProductImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Brand is the brand a product is sold under.
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// Category is a node of the catalog's category tree.
type Category struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *int64     `json:"parentId"`
	ImageURL string     `json:"imageUrl,omitempty"`
	Children []Category `json:"children,omitempty"`
}

// CartLineItem is one line of the cart: a product, the chosen variant and a quantity.
type CartLineItem struct {
	// ID is "{productId}-{variantId}"; there is at most one line per pair.
	ID       string         `json:"id"`
	Product  Product        `json:"product"`
	Variant  ProductVariant `json:"variant"`
	Quantity int            `json:"quantity"`
}

// LineTotal is the variant price times the quantity.
func (i CartLineItem) LineTotal() float64 {
	return i.Variant.Price * float64(i.Quantity)
}

func (i CartLineItem) clone() CartLineItem {
	out := i
	out.Product = i.Product.clone()
	out.Variant = i.Variant.clone()
	return out
}

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)
