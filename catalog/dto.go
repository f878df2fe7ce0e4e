package catalog

import (
	"time"

	"github.com/CreativeUnicorns/shopstate"
)

// Wire shapes of the catalog API.

type productDTO struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Description      *string             `json:"description"`
	ParentCategoryID int64               `json:"parentCategoryId"`
	BrandID          *int64              `json:"brandId"`
	Variants         []productVariantDTO `json:"variants"`
	Brand            *brandDTO           `json:"brand,omitempty"`
	Rating           float64             `json:"rating,omitempty"`
	ReviewCount      int                 `json:"reviewCount,omitempty"`
	CreatedAt        string              `json:"createdAt,omitempty"`
	UpdatedAt        string              `json:"updatedAt,omitempty"`
}

type productVariantDTO struct {
	ID         int64              `json:"id"`
	Price      float64            `json:"price"`
	Stock      int                `json:"stock"`
	Barcode    string             `json:"barcode"`
	SKU        string             `json:"sku"`
	Options    []variantOptionDTO `json:"options,omitempty"`
	Thumbnails []thumbnailDTO     `json:"thumbnails,omitempty"`
}

type variantOptionDTO struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type thumbnailDTO struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

type brandDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	WebsiteURL  *string `json:"websiteUrl,omitempty"`
}

type categoryDTO struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ParentCategoryID *int64        `json:"parentCategoryId"`
	Children         []categoryDTO `json:"children,omitempty"`
}

type paginatedDTO[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
}

type apiErrorDTO struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func mapProduct(dto productDTO) shopstate.Product {
	p := shopstate.Product{
		ID:          dto.ID,
		Name:        dto.Name,
		Slug:        dto.Slug,
		Description: deref(dto.Description),
		CategoryID:  dto.ParentCategoryID,
		BrandID:     dto.BrandID,
		Variants:    make([]shopstate.ProductVariant, 0, len(dto.Variants)),
		Images:      []shopstate.ProductImage{},
		Rating:      dto.Rating,
		ReviewCount: dto.ReviewCount,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
	if dto.Brand != nil {
		b := mapBrand(*dto.Brand)
		p.Brand = &b
	}
	for _, v := range dto.Variants {
		mapped := mapVariant(v)
		mapped.ProductID = dto.ID
		p.Variants = append(p.Variants, mapped)
	}
	if len(dto.Variants) > 0 {
		for _, t := range dto.Variants[0].Thumbnails {
			alt := t.AltText
			if alt == "" {
				alt = dto.Name
			}
			p.Images = append(p.Images, shopstate.ProductImage{ID: t.ID, URL: t.URL, Alt: alt})
		}
	}

	stamp := now().Format(time.RFC3339)
	if p.CreatedAt == "" {
		p.CreatedAt = stamp
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = stamp
	}
	return p
}

func mapVariant(dto productVariantDTO) shopstate.ProductVariant {
	v := shopstate.ProductVariant{
		ID:         dto.ID,
		Price:      dto.Price,
		Stock:      dto.Stock,
		SKU:        dto.SKU,
		Barcode:    dto.Barcode,
		Options:    make([]shopstate.VariantOption, 0, len(dto.Options)),
		Thumbnails: make([]shopstate.ProductImage, 0, len(dto.Thumbnails)),
	}
	for _, o := range dto.Options {
		v.Options = append(v.Options, shopstate.VariantOption{ID: o.ID, Title: o.Title, Value: o.Value})
	}
	for _, t := range dto.Thumbnails {
		v.Thumbnails = append(v.Thumbnails, shopstate.ProductImage{ID: t.ID, URL: t.URL, Alt: t.AltText})
	}
	return v
}

func mapBrand(dto brandDTO) shopstate.Brand {
	return shopstate.Brand{
		ID:          dto.ID,
		Name:        dto.Name,
		Slug:        dto.Slug,
		Description: deref(dto.Description),
		WebsiteURL:  deref(dto.WebsiteURL),
	}
}

func mapCategory(dto categoryDTO) shopstate.Category {
	c := shopstate.Category{
		ID:       dto.ID,
		Name:     dto.Name,
		Slug:     dto.Slug,
		ParentID: dto.ParentCategoryID,
	}
	if len(dto.Children) > 0 {
		c.Children = make([]shopstate.Category, 0, len(dto.Children))
		for _, child := range dto.Children {
			c.Children = append(c.Children, mapCategory(child))
		}
	}
	return c
}

func mapProducts(dtos []productDTO) []shopstate.Product {
	out := make([]shopstate.Product, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, mapProduct(dto))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
