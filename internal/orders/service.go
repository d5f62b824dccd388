package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/google/uuid"
)

var (
	ErrStateConflict        = errors.New("order state does not allow this change")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrMissingPaymentFields = errors.New("payment id and status are required")
)

// Service drives the order lifecycle. Every operation takes the acting
// principal explicitly and consults the authorization guard against the
// loaded order before touching it. Transition failures are always returned,
// never swallowed.
type Service struct {
	repo    Repository
	gateway payment.Gateway
}

func NewService(repo Repository, gateway payment.Gateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(p, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListMine returns the caller's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, p domain.Principal) ([]*domain.Order, error) {
	if p.Anonymous() {
		return nil, auth.ErrUnauthenticated
	}
	return s.repo.ListOrdersByUser(ctx, p.UserID)
}

// ListAll returns every order in the store, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, p domain.Principal) ([]*domain.Order, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx)
}

// MarkPaid records a gateway-reported payment on the order. The result
// fields are stored opaquely; only their presence is checked. Callable by
// owner or admin while the order is not in a terminal state.
func (s *Service) MarkPaid(ctx context.Context, p domain.Principal, id uuid.UUID, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(p, order); err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot pay for a %s order", ErrStateConflict, order.Status)
	}
	if result.ID == "" || result.Status == "" {
		return nil, ErrMissingPaymentFields
	}

	if _, err := s.gateway.Verify(ctx, result.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = &result

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDelivered flips the delivery flag. Admin only. The status field is
// deliberately left alone: status and the delivered flag are tracked
// independently and can diverge, matching the store's established behavior.
func (s *Service) MarkDelivered(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cap, err := auth.Authorize(p, order)
	if err != nil {
		return nil, err
	}
	if !cap.Admin {
		return nil, auth.ErrForbidden
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ForceStatus overwrites the status unconditionally. It is the admin escape
// hatch and bypasses the transition guards on purpose; only the status value
// itself is validated.
func (s *Service) ForceStatus(ctx context.Context, p domain.Principal, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cap, err := auth.Authorize(p, order)
	if err != nil {
		return nil, err
	}
	if !cap.Admin {
		return nil, auth.ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order.Status = status

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel moves the order to Cancelled. Owner or admin; refused once the
// parcel has been shipped.
func (s *Service) Cancel(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(p, order); err != nil {
		return nil, err
	}
	if order.Status.Dispatched() {
		return nil, fmt.Errorf("%w: cannot cancel order that has been shipped or delivered", ErrStateConflict)
	}

	order.Status = domain.OrderStatusCancelled

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// EditShippingAddress merges the non-empty fields of patch into the order's
// address. Owner or admin; refused once the parcel has been shipped.
func (s *Service) EditShippingAddress(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ShippingAddress) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(p, order); err != nil {
		return nil, err
	}
	if order.Status.Dispatched() {
		return nil, fmt.Errorf("%w: cannot edit order that has been shipped or delivered", ErrStateConflict)
	}

	order.ShippingAddress = order.ShippingAddress.Merge(patch)

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
