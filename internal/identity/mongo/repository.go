// Package mongo provides the MongoDB implementation of the identity repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository implements the identity.Repository interface using MongoDB.
type Repository struct {
	users *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{users: db.Collection("users")}
}

// UpsertUser inserts the user if no record exists for the email. The role
// and profile fields of an existing record are left untouched.
func (r *Repository) UpsertUser(ctx context.Context, user *domain.User) (bool, error) {
	now := time.Now().UTC()

	update := bson.M{
		"$setOnInsert": bson.M{
			"name":      user.Name,
			"email":     user.Email,
			"photoURL":  user.PhotoURL,
			"role":      user.Role,
			"createdAt": now,
			"updatedAt": now,
		},
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"email": user.Email},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// A concurrent first login can race the upsert into the unique
		// email index; the record exists, so fall through to the read.
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("upsert user: %w", err)
		}
	}

	created := res != nil && res.UpsertedCount == 1

	stored, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return false, fmt.Errorf("read back user: %w", err)
	}
	*user = *stored

	return created, nil
}

// GetUserByEmail retrieves a principal record by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a principal record by its id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, identity.ErrInvalidID
	}

	var user domain.User
	err = r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// ListUsers retrieves principals matching the filter, newest first.
func (r *Repository) ListUsers(ctx context.Context, filter identity.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	cursor, err := r.users.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateUserRole sets the role on a principal record.
func (r *Repository) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return identity.ErrInvalidID
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if res.MatchedCount == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}
