// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("product: not found")
	ErrInvalidID = errors.New("product: invalid id")
)

// Product is the catalog record the cart reads.
// Price is the current catalog price; carts keep their own snapshot.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	InStock   bool            `json:"inStock"`
	Stock     int             `json:"stock"`
}

// Normalize trims identifiers and fills the image from the thumbnail when absent.
func (p Product) Normalize() Product {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Image = strings.TrimSpace(p.Image)
	p.Thumbnail = strings.TrimSpace(p.Thumbnail)
	if p.Image == "" {
		p.Image = p.Thumbnail
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p
}
