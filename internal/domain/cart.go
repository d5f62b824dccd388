package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line in a cart. Price is a snapshot of the catalog
// price at the time the item was added; later catalog edits do not touch it.
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// SameVariant reports whether another add for (productID, size, color) should
// merge into this line instead of creating a new one.
func (i CartItem) SameVariant(productID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

type Cart struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"userId"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	// Revision increments on every persisted mutation and keys checkout
	// idempotency.
	Revision  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmptyCart is the shape returned when a user has no stored cart yet. An
// empty cart is a valid steady state, never a not-found condition.
func EmptyCart(userID string) *Cart {
	now := time.Now()
	return &Cart{
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
