package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartServiceMock struct {
	cart *domain.Cart
	err  error

	addedProductID string
	addedQuantity  int
	updatedItemID  string
	removedItemID  string
}

func (m *cartServiceMock) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) AddItem(_ context.Context, _, productID string, quantity int, _, _ string) (*domain.Cart, error) {
	m.addedProductID = productID
	m.addedQuantity = quantity
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) UpdateItem(_ context.Context, _, itemID string, _ int) (*domain.Cart, error) {
	m.updatedItemID = itemID
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) RemoveItem(_ context.Context, _, itemID string) (*domain.Cart, error) {
	m.removedItemID = itemID
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) Clear(_ context.Context, userID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return domain.EmptyCart(userID), nil
}

func handlerCart() *domain.Cart {
	return &domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "prod-1", Name: "MacBook Air", Price: decimal.RequireFromString("999.00"), Quantity: 1},
		},
		TotalAmount: decimal.RequireFromString("999.00"),
	}
}

func asOwner(r *http.Request) *http.Request {
	return r.WithContext(withPrincipal(r.Context(), domain.Principal{UserID: "u1"}))
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestGetCartHandler_Success(t *testing.T) {
	handler := NewCartHandler(&cartServiceMock{cart: handlerCart()}, 5*time.Second)

	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("GET", "/cart", nil))

	handler.GetCart(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.Cart)
	assert.Equal(t, "u1", env.Cart.UserID)
	require.Len(t, env.Cart.Items, 1)
	assert.Equal(t, "999", env.Cart.Items[0].Price.String())
}

func TestGetCartHandler_Anonymous(t *testing.T) {
	handler := NewCartHandler(&cartServiceMock{cart: handlerCart()}, 5*time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cart", nil) // no principal in context

	handler.GetCart(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestAddItemHandler_Success(t *testing.T) {
	svc := &cartServiceMock{cart: handlerCart()}
	handler := NewCartHandler(svc, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "prod-1", Quantity: 2, Size: "M2", Color: "silver"})
	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("POST", "/cart/add", bytes.NewReader(body)))

	handler.AddItem(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "prod-1", svc.addedProductID)
	assert.Equal(t, 2, svc.addedQuantity)
}

func TestAddItemHandler_Validation(t *testing.T) {
	handler := NewCartHandler(&cartServiceMock{cart: handlerCart()}, 5*time.Second)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing product", `{"quantity": 1}`},
		{"zero quantity", `{"productId": "prod-1", "quantity": 0}`},
		{"negative quantity", `{"productId": "prod-1", "quantity": -4}`},
		{"quantity too large", `{"productId": "prod-1", "quantity": 100}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := asOwner(httptest.NewRequest("POST", "/cart/add", bytes.NewReader([]byte(tc.body))))

			handler.AddItem(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestUpdateItemHandler_Success(t *testing.T) {
	svc := &cartServiceMock{cart: handlerCart()}
	handler := NewCartHandler(svc, 5*time.Second)

	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("PUT", "/cart/update/item-1", bytes.NewReader([]byte(`{"quantity": 3}`))))
	req = withRouteParam(req, "itemID", "item-1")

	handler.UpdateItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item-1", svc.updatedItemID)
}

func TestUpdateItemHandler_UnknownItem(t *testing.T) {
	handler := NewCartHandler(&cartServiceMock{err: cart.ErrItemNotFound}, 5*time.Second)

	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("PUT", "/cart/update/ghost", bytes.NewReader([]byte(`{"quantity": 3}`))))
	req = withRouteParam(req, "itemID", "ghost")

	handler.UpdateItem(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItemHandler_Success(t *testing.T) {
	svc := &cartServiceMock{cart: handlerCart()}
	handler := NewCartHandler(svc, 5*time.Second)

	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("DELETE", "/cart/remove/item-1", nil))
	req = withRouteParam(req, "itemID", "item-1")

	handler.RemoveItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item-1", svc.removedItemID)
}

func TestClearCartHandler_Success(t *testing.T) {
	handler := NewCartHandler(&cartServiceMock{}, 5*time.Second)

	rec := httptest.NewRecorder()
	req := asOwner(httptest.NewRequest("DELETE", "/cart/clear", nil))

	handler.ClearCart(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Cart)
	assert.Empty(t, env.Cart.Items)
}
