package domain

import (
	"regexp"
	"strings"
	"time"
)

// Product represents a catalog entry
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Stock         int       `json:"stock"`
	IsNew         bool      `json:"is_new"`
	Image         string    `json:"image"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate validates product fields
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		return ErrInvalidProduct
	}
	return nil
}

var slugStrip = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify derives a URL slug from a product name
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

// ProductFilter narrows catalog listings
type ProductFilter struct {
	Category string
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
