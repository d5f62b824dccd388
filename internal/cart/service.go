package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Service owns the mutable cart of each user. Every mutation recomputes the
// cart total from its line items before persisting, so totalAmount always
// equals the sum of price×quantity.
type Service struct {
	repo    Repository
	cache   Cache
	catalog catalog.Catalog
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, cat catalog.Catalog) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		catalog: cat,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem puts quantity units of a product variant into the cart, merging
// into an existing line when (productID, size, color) already matches. The
// unit price is snapshotted from the catalog at call time.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int, size, color string) (*domain.Cart, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].SameVariant(productID, size, color) {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
		})
	}

	return s.persist(ctx, cart)
}

// UpdateItem sets the quantity of a line item. A quantity of zero or less
// removes the line entirely.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	return s.persist(ctx, cart)
}

// RemoveItem drops a line item. Removing an id that is not in the cart is a
// no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.persist(ctx, cart)
}

// Clear empties the cart and zeroes its total. The cart document survives.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}

	cleared, err := s.repo.ClearCart(ctx, userID)
	if err != nil {
		log.Printf("repo clear cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return cleared, nil
}

func (s *Service) loadOrEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return domain.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) persist(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	total, err := pricing.ItemsTotal(cart.Items)
	if err != nil {
		return nil, err
	}
	cart.TotalAmount = total

	updated, err := s.repo.ReplaceCart(ctx, cart)
	if err != nil {
		log.Printf("repo replace cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(cart.UserID)
	return updated, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
