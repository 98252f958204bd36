// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("cart: invalid input")
	ErrProductNotFound = errors.New("cart: product not found")
	ErrItemNotFound    = errors.New("cart: item not found")
)

// Variant holds the optional attributes that take part in line identity.
// Empty strings mean "unset".
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

func (v Variant) normalize() Variant {
	return Variant{
		Size:  strings.TrimSpace(v.Size),
		Color: strings.TrimSpace(v.Color),
	}
}

// ProductSnapshot is what a line copies from the catalog at add time.
type ProductSnapshot struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
}

// LineItem represents one product/variant combination in a cart.
// Name and UnitPrice are a snapshot and are never refreshed.
type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Variant
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Cart is the per-identity cart.
//   - Items keeps insertion order.
//   - Total / ItemCount are derived and recomputed by every mutation.
type Cart struct {
	Identity  string          `json:"identity"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Summary is a read projection without enrichment.
type Summary struct {
	ItemCount         int             `json:"itemCount"`
	Total             decimal.Decimal `json:"total"`
	DistinctLineCount int             `json:"distinctLineCount"`
}

// NewCart creates an empty cart for identity.
func NewCart(identity string, now time.Time) *Cart {
	return &Cart{
		Identity:  identity,
		Items:     []LineItem{},
		Total:     decimal.Zero,
		ItemCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add folds qty into the line matching (productId, size, color) or appends a new one.
// newID is only called when a new line is appended.
// ItemCount bounds every line quantity, so one cart-wide check covers both.
func (c *Cart) Add(p ProductSnapshot, qty int, v Variant, newID func() string, now time.Time) (LineItem, error) {
	if c == nil {
		return LineItem{}, ErrInvalidInput
	}

	pid := strings.TrimSpace(p.ProductID)
	if pid == "" {
		return LineItem{}, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	if qty <= 0 {
		return LineItem{}, fmt.Errorf("%w: quantity must be >= 1 (got %d)", ErrInvalidInput, qty)
	}
	v = v.normalize()

	if c.ItemCount > math.MaxInt-qty {
		return LineItem{}, fmt.Errorf("%w: quantity %d overflows cart item count %d", ErrInvalidInput, qty, c.ItemCount)
	}

	if idx := c.findLine(pid, v); idx >= 0 {
		it := &c.Items[idx]
		it.Quantity += qty
		it.Subtotal = lineSubtotal(it.UnitPrice, it.Quantity)
		c.touch(now)
		return *it, nil
	}

	if newID == nil {
		return LineItem{}, fmt.Errorf("%w: id generator is nil", ErrInvalidInput)
	}
	it := LineItem{
		ID:        newID(),
		ProductID: pid,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
		Variant:   v,
		Subtotal:  lineSubtotal(p.UnitPrice, qty),
	}
	c.Items = append(c.Items, it)
	c.touch(now)
	return it, nil
}

// SetQuantity replaces the quantity of the line with itemID.
// qty must be >= 1; removal goes through Remove.
func (c *Cart) SetQuantity(itemID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidInput
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be >= 1 (got %d)", ErrInvalidInput, qty)
	}

	idx := c.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: id=%q", ErrItemNotFound, strings.TrimSpace(itemID))
	}
	if others := c.ItemCount - c.Items[idx].Quantity; qty > math.MaxInt-others {
		return fmt.Errorf("%w: quantity %d overflows cart item count", ErrInvalidInput, qty)
	}

	c.Items[idx].Quantity = qty
	c.Items[idx].Subtotal = lineSubtotal(c.Items[idx].UnitPrice, qty)
	c.touch(now)
	return nil
}

// Remove deletes the line with itemID, keeping the order of the others.
func (c *Cart) Remove(itemID string, now time.Time) error {
	if c == nil {
		return ErrInvalidInput
	}

	idx := c.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: id=%q", ErrItemNotFound, strings.TrimSpace(itemID))
	}

	c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
	c.touch(now)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Items = []LineItem{}
	c.touch(now)
}

// Summary returns the aggregate projection of the current items.
func (c *Cart) Summary() Summary {
	if c == nil {
		return Summary{Total: decimal.Zero}
	}
	return Summary{
		ItemCount:         c.ItemCount,
		Total:             c.Total,
		DistinctLineCount: len(c.Items),
	}
}

// Clone returns a deep copy safe to hand out of the store.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// Item returns the line with itemID.
func (c *Cart) Item(itemID string) (LineItem, bool) {
	if c == nil {
		return LineItem{}, false
	}
	idx := c.indexOf(itemID)
	if idx < 0 {
		return LineItem{}, false
	}
	return c.Items[idx], true
}

// touch recomputes the aggregates and bumps UpdatedAt.
func (c *Cart) touch(now time.Time) {
	total := decimal.Zero
	count := 0
	for _, it := range c.Items {
		total = total.Add(it.Subtotal)
		count += it.Quantity
	}
	c.Total = total
	c.ItemCount = count
	c.UpdatedAt = now
}

// ----------------------------
// Helpers
// ----------------------------

func (c *Cart) findLine(productID string, v Variant) int {
	for i := range c.Items {
		it := c.Items[i]
		if it.ProductID == productID && it.Size == v.Size && it.Color == v.Color {
			return i
		}
	}
	return -1
}

func (c *Cart) indexOf(itemID string) int {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return -1
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func lineSubtotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
