package cart

import (
	"context"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) Repository {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	return repo
}

func storedCart(userID string) *domain.Cart {
	return &domain.Cart{
		UserID: userID,
		Items: []domain.CartItem{
			{ID: "i1", ProductID: "prod-1", Name: "MacBook Air", Image: "air.jpg", Price: decimal.RequireFromString("999.00"), Quantity: 2, Color: "silver"},
			{ID: "i2", ProductID: "prod-2", Name: "AirPods Pro", Price: decimal.RequireFromString("249.99"), Quantity: 1},
		},
		TotalAmount: decimal.RequireFromString("2247.99"),
	}
}

func TestMongoGetCart_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	cart, err := repo.GetCart(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongoReplaceCart_CreatesAndReads(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	saved, err := repo.ReplaceCart(ctx, storedCart("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Revision)

	got, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("999.00")))
	assert.Equal(t, "silver", got.Items[0].Color)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("2247.99")))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMongoReplaceCart_BumpsRevision(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.ReplaceCart(ctx, storedCart("u1"))
	require.NoError(t, err)

	second, err := repo.ReplaceCart(ctx, storedCart("u1"))
	require.NoError(t, err)
	assert.Equal(t, first.Revision+1, second.Revision)
}

func TestMongoClearCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.ReplaceCart(ctx, storedCart("u1"))
	require.NoError(t, err)

	cleared, err := repo.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.True(t, cleared.TotalAmount.IsZero())
	assert.Equal(t, int64(2), cleared.Revision)
}

func TestMongoClearCart_NoCartYet(t *testing.T) {
	repo := setupTestDB(t)

	cleared, err := repo.ClearCart(context.Background(), "fresh-user")
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.True(t, cleared.TotalAmount.IsZero())
}

func TestMongoCarts_AreIsolatedPerUser(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.ReplaceCart(ctx, storedCart("u1"))
	require.NoError(t, err)

	_, err = repo.GetCart(ctx, "u2")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
