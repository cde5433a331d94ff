package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// Variant is a color/size selection. Empty strings mean "not selected".
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// ResolveVariant applies variant precedence: explicit selection, then the
// product's first variant, then none.
func ResolveVariant(p Product, sel Variant) Variant {
	out := sel
	if out.Color == "" {
		out.Color = p.DefaultColor()
	}
	if out.Size == "" {
		out.Size = p.DefaultSize()
	}
	return out
}

// CartItem is one line item. Quantity is always at least 1.
type CartItem struct {
	ID       uuid.UUID `json:"id"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	Variant  Variant   `json:"variant"`
}

// LineKey identifies a line for merge purposes.
type LineKey struct {
	ProductID int
	Variant   Variant
}

// Key returns the merge identity of the line.
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.Product.ID, Variant: i.Variant}
}

// LineTotal returns product price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ToOrderItem snapshots the line into an independent order item with a fresh id.
func (i CartItem) ToOrderItem() OrderItem {
	return OrderItem{
		ID:            uuid.New(),
		ProductID:     i.Product.ID,
		ProductName:   i.Product.Name,
		Price:         i.Product.Price,
		Quantity:      i.Quantity,
		SelectedColor: i.Variant.Color,
		SelectedSize:  i.Variant.Size,
	}
}
