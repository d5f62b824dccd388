package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartClearError reports an order that was placed but whose cart could not
// be cleared afterwards. The order exists; the client must not be told the
// checkout failed silently, nor that everything is fine.
type CartClearError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *CartClearError) Error() string {
	return fmt.Sprintf("order %s placed but cart clear failed: %v", e.OrderID, e.Err)
}

func (e *CartClearError) Unwrap() error { return e.Err }

// CartStore is the slice of the cart service the coordinator needs.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

// OrderStore is the slice of the orders repository the coordinator needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByCheckoutKey(ctx context.Context, key string) (*domain.Order, error)
}

// Coordinator turns a cart into an order: snapshot the items, price them,
// persist the order, then clear the cart. Retried checkouts of the same
// cart revision return the already-placed order instead of a duplicate.
type Coordinator struct {
	carts  CartStore
	orders OrderStore
}

func NewCoordinator(carts CartStore, orders OrderStore) *Coordinator {
	return &Coordinator{carts: carts, orders: orders}
}

func (c *Coordinator) Checkout(ctx context.Context, p domain.Principal, addr domain.ShippingAddress, paymentMethod string) (*domain.Order, error) {
	if p.Anonymous() {
		return nil, auth.ErrUnauthenticated
	}

	cart, err := c.carts.GetCart(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	totals, err := pricing.Compute(cart.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}

	items := make([]domain.OrderItem, len(cart.Items))
	for i, ci := range cart.Items {
		items[i] = domain.OrderItem{
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Image:     ci.Image,
			Price:     ci.Price,
			Quantity:  ci.Quantity,
			Size:      ci.Size,
			Color:     ci.Color,
		}
	}

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          p.UserID,
		CheckoutKey:     fmt.Sprintf("%s:%d", p.UserID, cart.Revision),
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      totals.ItemsPrice,
		TaxPrice:        totals.TaxPrice,
		ShippingPrice:   totals.ShippingPrice,
		TotalPrice:      totals.TotalPrice,
		Status:          domain.OrderStatusPlaced,
		CreatedAt:       time.Now().UTC(),
	}

	if err := c.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, orders.ErrDuplicateCheckout) {
			// Same cart revision was already checked out. Hand back the
			// order that retry raced against.
			existing, lookupErr := c.orders.GetOrderByCheckoutKey(ctx, order.CheckoutKey)
			if lookupErr != nil {
				return nil, fmt.Errorf("duplicate checkout %s but lookup failed: %w", order.CheckoutKey, lookupErr)
			}
			log.Printf("checkout %s already placed as order %s", order.CheckoutKey, existing.ID)
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if _, err := c.carts.Clear(ctx, p.UserID); err != nil {
		return nil, &CartClearError{OrderID: order.ID, Err: err}
	}

	return order, nil
}
