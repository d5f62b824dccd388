package auth

import (
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderOwnedBy(userID string) *domain.Order {
	return &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: domain.OrderStatusPlaced,
	}
}

func TestAuthorize_Owner(t *testing.T) {
	cap, err := Authorize(domain.Principal{UserID: "u1"}, orderOwnedBy("u1"))
	require.NoError(t, err)
	assert.True(t, cap.Read)
	assert.True(t, cap.Mutate)
	assert.False(t, cap.Admin)
}

func TestAuthorize_Admin(t *testing.T) {
	cap, err := Authorize(domain.Principal{UserID: "root", Admin: true}, orderOwnedBy("u1"))
	require.NoError(t, err)
	assert.True(t, cap.Read)
	assert.True(t, cap.Mutate)
	assert.True(t, cap.Admin)
}

func TestAuthorize_Stranger(t *testing.T) {
	// regardless of order status, a non-owner non-admin is refused
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPlaced,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	} {
		order := orderOwnedBy("u1")
		order.Status = status
		_, err := Authorize(domain.Principal{UserID: "u2"}, order)
		assert.ErrorIs(t, err, ErrForbidden, "status %s", status)
	}
}

func TestAuthorize_Anonymous(t *testing.T) {
	_, err := Authorize(domain.Principal{}, orderOwnedBy("u1"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(domain.Principal{UserID: "root", Admin: true}))
	assert.ErrorIs(t, RequireAdmin(domain.Principal{UserID: "u1"}), ErrForbidden)
	assert.ErrorIs(t, RequireAdmin(domain.Principal{}), ErrUnauthenticated)
}

func TestParseToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	signed, err := SignToken(secret, domain.Principal{UserID: "u42", Admin: true}, time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(secret, signed)
	require.NoError(t, err)
	assert.Equal(t, "u42", p.UserID)
	assert.True(t, p.Admin)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	signed, err := SignToken(secret, domain.Principal{UserID: "u42"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, signed)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseToken_WrongSecret(t *testing.T) {
	signed, err := SignToken([]byte("secret-a"), domain.Principal{UserID: "u42"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("secret-b"), signed)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken([]byte("secret"), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
