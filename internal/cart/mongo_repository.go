package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDoc is the stored shape. Money is kept as decimal strings; BSON has no
// encoding for decimal.Decimal and floats are not acceptable for prices.
type cartDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Items       []cartItemDoc      `bson:"items"`
	TotalAmount string             `bson:"total_amount"`
	Revision    int64              `bson:"revision"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type cartItemDoc struct {
	ID        string `bson:"id"`
	ProductID string `bson:"product_id"`
	Name      string `bson:"name"`
	Image     string `bson:"image"`
	Price     string `bson:"price"`
	Quantity  int    `bson:"quantity"`
	Size      string `bson:"size,omitempty"`
	Color     string `bson:"color,omitempty"`
}

func toDoc(c *domain.Cart) ([]cartItemDoc, string) {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return items, c.TotalAmount.String()
}

func fromDoc(doc *cartDoc) (*domain.Cart, error) {
	total, err := decimal.NewFromString(doc.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("stored total_amount %q is not a decimal: %w", doc.TotalAmount, err)
	}

	items := make([]domain.CartItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("stored price %q is not a decimal: %w", it.Price, err)
		}
		items = append(items, domain.CartItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}

	return &domain.Cart{
		ID:          doc.ID.Hex(),
		UserID:      doc.UserID,
		Items:       items,
		TotalAmount: total,
		Revision:    doc.Revision,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var doc cartDoc

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromDoc(&doc)
}

func (m *MongoRepository) ReplaceCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	now := time.Now()
	items, total := toDoc(cart)

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{
		"$set": bson.M{
			"items":        items,
			"total_amount": total,
			"updated_at":   now,
		},
		"$inc":         bson.M{"revision": 1},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc cartDoc
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert cart: %w", err)
	}

	return fromDoc(&doc)
}

func (m *MongoRepository) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	now := time.Now()

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"items":        []cartItemDoc{},
			"total_amount": "0",
			"updated_at":   now,
		},
		"$inc":         bson.M{"revision": 1},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc cartDoc
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return fromDoc(&doc)
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
