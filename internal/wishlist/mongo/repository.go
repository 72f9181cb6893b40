// Package mongo provides the MongoDB implementation of the wishlist repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/wishlist"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository implements the wishlist.Repository interface using MongoDB.
type Repository struct {
	items *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{items: db.Collection("wishlist")}
}

// AddItem inserts a wishlist document. A unique-index violation on
// (productId, userEmail) maps to the duplicate sentinel.
func (r *Repository) AddItem(ctx context.Context, item *domain.WishlistItem) error {
	item.CreatedAt = time.Now().UTC()

	res, err := r.items.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return wishlist.ErrItemExists
		}
		return fmt.Errorf("insert wishlist item: %w", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetItemByID retrieves one wishlist item by its hex id.
func (r *Repository) GetItemByID(ctx context.Context, id string) (*domain.WishlistItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, wishlist.ErrInvalidID
	}

	var item domain.WishlistItem
	err = r.items.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wishlist.ErrItemNotFound
		}
		return nil, fmt.Errorf("get wishlist item by id: %w", err)
	}
	return &item, nil
}

// GetItemByProductAndUser retrieves the item keyed by the compound
// (productId, userEmail) pair.
func (r *Repository) GetItemByProductAndUser(ctx context.Context, productID, userEmail string) (*domain.WishlistItem, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, wishlist.ErrInvalidID
	}

	var item domain.WishlistItem
	err = r.items.FindOne(ctx, bson.M{"productId": oid, "userEmail": userEmail}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wishlist.ErrItemNotFound
		}
		return nil, fmt.Errorf("get wishlist item by product and user: %w", err)
	}
	return &item, nil
}

// ListItemsByUser retrieves a user's wishlist, newest first.
func (r *Repository) ListItemsByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error) {
	cursor, err := r.items.Find(ctx,
		bson.M{"userEmail": userEmail},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]domain.WishlistItem, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode wishlist items: %w", err)
	}
	return result, nil
}

// DeleteItem removes a wishlist document; zero deleted reports not-found.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return wishlist.ErrInvalidID
	}

	res, err := r.items.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if res.DeletedCount == 0 {
		return wishlist.ErrItemNotFound
	}
	return nil
}
