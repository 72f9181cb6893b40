package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdStatus is the moderation state of an advertisement.
type AdStatus string

const (
	AdStatusPending  AdStatus = "pending"
	AdStatusApproved AdStatus = "approved"
	AdStatusRejected AdStatus = "rejected"
	AdStatusExpired  AdStatus = "expired"
)

// IsValid reports whether s is a known advertisement status.
func (s AdStatus) IsValid() bool {
	switch s {
	case AdStatusPending, AdStatusApproved, AdStatusRejected, AdStatusExpired:
		return true
	}
	return false
}

// Advertisement is a vendor promotion shown on the storefront until it
// expires or an admin rejects it.
type Advertisement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorEmail string             `bson:"vendorEmail" json:"vendorEmail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	Status      AdStatus           `bson:"status" json:"status"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
