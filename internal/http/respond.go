package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/pricing"
)

// Envelope is the JSON shape of every response. Exactly one of Cart, Order
// or Orders is set on success; Message carries the error text on failure.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Cart    *domain.Cart    `json:"cart,omitempty"`
	Order   *domain.Order   `json:"order,omitempty"`
	Orders  []*domain.Order `json:"orders,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondCart(w http.ResponseWriter, status int, c *domain.Cart) {
	respondJSON(w, status, Envelope{Success: true, Cart: c})
}

func respondOrder(w http.ResponseWriter, status int, o *domain.Order) {
	respondJSON(w, status, Envelope{Success: true, Order: o})
}

func respondOrders(w http.ResponseWriter, status int, list []*domain.Order) {
	if list == nil {
		list = []*domain.Order{}
	}
	respondJSON(w, status, Envelope{Success: true, Orders: list})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Envelope{Success: false, Message: message})
}

// respondServiceError maps service sentinel errors onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrStateConflict),
		errors.Is(err, orders.ErrMissingPaymentFields):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		status = http.StatusNotFound
	default:
		// Includes checkout.CartClearError: the order was placed but the
		// cart survived, which the client must learn about as a failure.
		log.Printf("request failed: %v", err)
		status = http.StatusInternalServerError
	}
	respondError(w, status, err.Error())
}
