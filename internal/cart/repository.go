package cart

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// Repository persists one cart document per user. Writes are whole-cart
// upserts: the service recomputes the line items and totals in memory and the
// repository replaces the stored state in a single atomic operation, bumping
// the revision counter. Concurrent writers resolve last-write-wins.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// ReplaceCart upserts the cart and returns the stored state including
	// the new revision.
	ReplaceCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	// ClearCart empties the items and zeroes the total. The document stays
	// around; an emptied cart is a valid steady state.
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
}
