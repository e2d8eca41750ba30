package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// ProductFields are the administrator-editable attributes of a product.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

func (p *Product) apply(f ProductFields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Stock = f.Stock
	p.ImageURL = f.ImageURL
}

// NewProduct builds a product record with the given id and creation time.
func NewProduct(id string, f ProductFields, now time.Time) Product {
	p := Product{ID: id, CreatedAt: now}
	p.apply(f)
	return p
}

// Replace overwrites every mutable field, keeping ID and CreatedAt.
func (p *Product) Replace(f ProductFields, now time.Time) {
	p.apply(f)
	p.UpdatedAt = &now
}
