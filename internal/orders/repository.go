package orders

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateCheckout means an order for this cart revision already
	// exists; the caller should fetch and return it instead of failing.
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository interface {
	// CreateOrder inserts the order and its order.placed outbox event in a
	// single transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByCheckoutKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	// UpdateOrder persists the mutable fields: status, paid/delivered flags,
	// payment result and shipping address. Snapshot fields never change.
	UpdateOrder(ctx context.Context, order *domain.Order) error

	UnpublishedEvents(ctx context.Context, limit int) ([]*events.Event, error)
	MarkEventPublished(ctx context.Context, id int64) error

	RunMigrations(*Credentials) error
	Close() error
}
