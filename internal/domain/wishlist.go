package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem bookmarks a product for a user. One item per
// (productId, userEmail) pair, enforced by a unique index.
type WishlistItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	UserEmail   string             `bson:"userEmail" json:"userEmail"`
	ProductName string             `bson:"productName,omitempty" json:"productName,omitempty"`
	Market      string             `bson:"market,omitempty" json:"market,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
