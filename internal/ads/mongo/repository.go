// Package mongo provides the MongoDB implementation of the ads repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/ads"
	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository implements the ads.Repository interface using MongoDB.
type Repository struct {
	ads *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{ads: db.Collection("advertisements")}
}

// CreateAd inserts an advertisement document.
func (r *Repository) CreateAd(ctx context.Context, ad *domain.Advertisement) error {
	now := time.Now().UTC()
	ad.CreatedAt = now
	ad.UpdatedAt = now

	res, err := r.ads.InsertOne(ctx, ad)
	if err != nil {
		return fmt.Errorf("insert advertisement: %w", err)
	}
	ad.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetAdByID retrieves one advertisement by its hex id.
func (r *Repository) GetAdByID(ctx context.Context, id string) (*domain.Advertisement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ads.ErrInvalidID
	}

	var ad domain.Advertisement
	err = r.ads.FindOne(ctx, bson.M{"_id": oid}).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ads.ErrAdNotFound
		}
		return nil, fmt.Errorf("get advertisement by id: %w", err)
	}
	return &ad, nil
}

// ListAds retrieves advertisements matching the filter, newest first.
func (r *Repository) ListAds(ctx context.Context, filter ads.AdFilter) ([]domain.Advertisement, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.VendorEmail != nil {
		query["vendorEmail"] = *filter.VendorEmail
	}

	cursor, err := r.ads.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list advertisements: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]domain.Advertisement, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode advertisements: %w", err)
	}
	return result, nil
}

// UpdateAd replaces the mutable fields of an advertisement document.
func (r *Repository) UpdateAd(ctx context.Context, ad *domain.Advertisement) error {
	res, err := r.ads.UpdateOne(ctx,
		bson.M{"_id": ad.ID},
		bson.M{"$set": bson.M{
			"title":       ad.Title,
			"description": ad.Description,
			"imageURL":    ad.ImageURL,
			"status":      ad.Status,
			"expiresAt":   ad.ExpiresAt,
			"updatedAt":   ad.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update advertisement: %w", err)
	}
	if res.MatchedCount == 0 {
		return ads.ErrAdNotFound
	}
	return nil
}

// UpdateAdStatus sets the moderation status.
func (r *Repository) UpdateAdStatus(ctx context.Context, id string, status domain.AdStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ads.ErrInvalidID
	}

	res, err := r.ads.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update advertisement status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ads.ErrAdNotFound
	}
	return nil
}

// DeleteAd removes an advertisement document; zero deleted reports not-found.
func (r *Repository) DeleteAd(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ads.ErrInvalidID
	}

	res, err := r.ads.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete advertisement: %w", err)
	}
	if res.DeletedCount == 0 {
		return ads.ErrAdNotFound
	}
	return nil
}

// ExpireOverdue marks approved ads past now as expired.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.ads.UpdateMany(ctx,
		bson.M{
			"status":    domain.AdStatusApproved,
			"expiresAt": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": domain.AdStatusExpired, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("expire advertisements: %w", err)
	}
	return res.ModifiedCount, nil
}
