// internal/application/query/dto/cart_dto.go
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	cartdom "primepicks/internal/domain/cart"
	productdom "primepicks/internal/domain/product"
)

// EnrichedCart is the cart view with live catalog data attached per line.
// NOTE: stored snapshot prices (UnitPrice/Subtotal) are never replaced by catalog prices.
type EnrichedCart struct {
	Identity  string          `json:"identity"`
	Items     []EnrichedLine  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type EnrichedLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`

	// Product is nil when the catalog lookup for this line failed.
	Product *ProductView `json:"product,omitempty"`
}

// ProductView is the display projection of a catalog product.
type ProductView struct {
	Name    string          `json:"name"`
	Brand   string          `json:"brand,omitempty"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image,omitempty"`
	InStock bool            `json:"inStock"`
	Stock   int             `json:"stock"`
}

type SummaryDTO struct {
	ItemCount         int             `json:"itemCount"`
	Total             decimal.Decimal `json:"total"`
	DistinctLineCount int             `json:"distinctLineCount"`
}

// NewEnrichedCart maps a cart without any enrichment.
func NewEnrichedCart(c *cartdom.Cart) EnrichedCart {
	if c == nil {
		return EnrichedCart{Items: []EnrichedLine{}, Total: decimal.Zero}
	}

	items := make([]EnrichedLine, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, EnrichedLine{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Subtotal:  it.Subtotal,
		})
	}

	return EnrichedCart{
		Identity:  c.Identity,
		Items:     items,
		Total:     c.Total,
		ItemCount: c.ItemCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewProductView(p productdom.Product) *ProductView {
	return &ProductView{
		Name:    p.Name,
		Brand:   p.Brand,
		Price:   p.Price,
		Image:   p.Image,
		InStock: p.InStock,
		Stock:   p.Stock,
	}
}

func NewSummaryDTO(s cartdom.Summary) SummaryDTO {
	return SummaryDTO{
		ItemCount:         s.ItemCount,
		Total:             s.Total,
		DistinctLineCount: s.DistinctLineCount,
	}
}
