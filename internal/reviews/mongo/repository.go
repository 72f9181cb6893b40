// Package mongo provides the MongoDB implementation of the reviews repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/reviews"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository implements the reviews.Repository interface using MongoDB.
type Repository struct {
	reviews *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{reviews: db.Collection("reviews")}
}

// CreateReview inserts a review document. A unique-index violation on
// (productId, userEmail) maps to the duplicate sentinel so a lost race
// still surfaces as a conflict, not a 500.
func (r *Repository) CreateReview(ctx context.Context, review *domain.Review) error {
	review.CreatedAt = time.Now().UTC()

	res, err := r.reviews.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reviews.ErrReviewExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	review.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetReviewByID retrieves one review by its hex id.
func (r *Repository) GetReviewByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, reviews.ErrInvalidID
	}

	var review domain.Review
	err = r.reviews.FindOne(ctx, bson.M{"_id": oid}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reviews.ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return &review, nil
}

// GetReviewByProductAndUser retrieves the review keyed by the compound
// (productId, userEmail) pair.
func (r *Repository) GetReviewByProductAndUser(ctx context.Context, productID, userEmail string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, reviews.ErrInvalidID
	}

	var review domain.Review
	err = r.reviews.FindOne(ctx, bson.M{"productId": oid, "userEmail": userEmail}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reviews.ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review by product and user: %w", err)
	}
	return &review, nil
}

// ListReviewsByProduct retrieves a product's reviews, newest first.
func (r *Repository) ListReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, reviews.ErrInvalidID
	}

	cursor, err := r.reviews.Find(ctx,
		bson.M{"productId": oid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]domain.Review, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return result, nil
}

// UpdateReview sets rating, comment and updatedAt.
func (r *Repository) UpdateReview(ctx context.Context, id string, rating int, comment string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return reviews.ErrInvalidID
	}

	res, err := r.reviews.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"rating":    rating,
			"comment":   comment,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return reviews.ErrReviewNotFound
	}
	return nil
}

// DeleteReview removes a review document. Zero deleted means the id was
// already gone and reports not-found.
func (r *Repository) DeleteReview(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return reviews.ErrInvalidID
	}

	res, err := r.reviews.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return reviews.ErrReviewNotFound
	}
	return nil
}
