// Package mongo provides the MongoDB implementation of the payments repository.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository implements the payments.Repository interface using MongoDB.
type Repository struct {
	orders *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{orders: db.Collection("orders")}
}

// CreateOrder inserts an order document.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	order.CreatedAt = time.Now().UTC()

	res, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListOrdersByUser retrieves a user's orders, newest first.
func (r *Repository) ListOrdersByUser(ctx context.Context, userEmail string) ([]domain.Order, error) {
	cursor, err := r.orders.Find(ctx,
		bson.M{"userEmail": userEmail},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]domain.Order, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return result, nil
}
