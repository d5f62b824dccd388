package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartService is the slice of the cart service the handler needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int, size, color string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := principalFrom(r.Context())
	if p.Anonymous() {
		respondServiceError(w, auth.ErrUnauthenticated)
		return
	}

	cart, err := h.carts.GetCart(ctx, p.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := principalFrom(r.Context())
	if p.Anonymous() {
		respondServiceError(w, auth.ErrUnauthenticated)
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.AddItem(ctx, p.UserID, req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCart(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := principalFrom(r.Context())
	if p.Anonymous() {
		respondServiceError(w, auth.ErrUnauthenticated)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "item id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "quantity must be at most 99")
		return
	}

	// Quantity zero or below removes the line, so it passes through.
	cart, err := h.carts.UpdateItem(ctx, p.UserID, itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := principalFrom(r.Context())
	if p.Anonymous() {
		respondServiceError(w, auth.ErrUnauthenticated)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "item id is required")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, p.UserID, itemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := principalFrom(r.Context())
	if p.Anonymous() {
		respondServiceError(w, auth.ErrUnauthenticated)
		return
	}

	cart, err := h.carts.Clear(ctx, p.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}
