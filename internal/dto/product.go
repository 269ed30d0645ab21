package dto

import (
	"strings"

	"github.com/Bronny721/nadu-website/internal/domain"
)

// ProductRequest represents a product create or replace
type ProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         *float64 `json:"price" binding:"required,gte=0"`
	OriginalPrice *float64 `json:"original_price" binding:"omitempty,gte=0"`
	Stock         int      `json:"stock" binding:"gte=0"`
	IsNew         bool     `json:"is_new"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
}

// ToDomain builds a product from the request
func (r *ProductRequest) ToDomain() *domain.Product {
	p := &domain.Product{
		Name:          strings.TrimSpace(r.Name),
		Slug:          strings.TrimSpace(r.Slug),
		Description:   r.Description,
		Category:      strings.TrimSpace(r.Category),
		OriginalPrice: r.OriginalPrice,
		Stock:         r.Stock,
		IsNew:         r.IsNew,
		Image:         r.Image,
		Images:        r.Images,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Name)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

// ProductListResponse wraps a product listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
}

// NewProductListResponse never returns a nil slice
func NewProductListResponse(products []*domain.Product) ProductListResponse {
	if products == nil {
		products = []*domain.Product{}
	}
	return ProductListResponse{Products: products, Total: len(products)}
}
