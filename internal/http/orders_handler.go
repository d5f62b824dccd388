package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderService is the slice of the orders service the handler needs.
type OrderService interface {
	Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error)
	ListMine(ctx context.Context, p domain.Principal) ([]*domain.Order, error)
	ListAll(ctx context.Context, p domain.Principal) ([]*domain.Order, error)
	MarkPaid(ctx context.Context, p domain.Principal, id uuid.UUID, result domain.PaymentResult) (*domain.Order, error)
	MarkDelivered(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error)
	ForceStatus(ctx context.Context, p domain.Principal, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error)
	EditShippingAddress(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.ShippingAddress) (*domain.Order, error)
}

// CheckoutService places an order from the caller's current cart.
type CheckoutService interface {
	Checkout(ctx context.Context, p domain.Principal, addr domain.ShippingAddress, paymentMethod string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders   OrderService
	checkout CheckoutService
	timeout  time.Duration
}

func NewOrdersHandler(orders OrderService, checkout CheckoutService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, checkout: checkout, timeout: timeout}
}

type PlaceOrderRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type PayOrderRequestDTO struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Email      string `json:"email_address"`
}

type SetStatusRequestDTO struct {
	Status string `json:"status"`
}

type EditAddressRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

func orderIDFromURL(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "paymentMethod is required")
		return
	}

	order, err := h.checkout.Checkout(ctx, principalFrom(r.Context()), req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusCreated, order)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.Get(ctx, principalFrom(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}

func (h *OrdersHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.orders.ListMine(ctx, principalFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrders(w, http.StatusOK, list)
}

func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.orders.ListAll(ctx, principalFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrders(w, http.StatusOK, list)
}

func (h *OrdersHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req PayOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result := domain.PaymentResult{
		ID:         req.ID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
		Email:      req.Email,
	}

	order, err := h.orders.MarkPaid(ctx, principalFrom(r.Context()), id, result)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}

func (h *OrdersHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.MarkDelivered(ctx, principalFrom(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}

func (h *OrdersHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req SetStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.ForceStatus(ctx, principalFrom(r.Context()), id, domain.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.Cancel(ctx, principalFrom(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}

func (h *OrdersHandler) EditOrderAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req EditAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.EditShippingAddress(ctx, principalFrom(r.Context()), id, req.ShippingAddress)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondOrder(w, http.StatusOK, order)
}
