package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus is the moderation state of a vendor listing.
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

// IsValid reports whether s is a known product status.
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusPending, ProductStatusApproved, ProductStatusRejected:
		return true
	}
	return false
}

// PriceEntry is one point in a product's price history.
type PriceEntry struct {
	Price float64   `bson:"price" json:"price"`
	Date  time.Time `bson:"date" json:"date"`
}

// Product is a vendor's market listing. Price holds the current price;
// Prices keeps the history the vendor appends to over time.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorEmail string             `bson:"vendorEmail" json:"vendorEmail"`
	VendorName  string             `bson:"vendorName,omitempty" json:"vendorName,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Market      string             `bson:"market" json:"market"`
	Status      ProductStatus      `bson:"status" json:"status"`
	Price       float64            `bson:"price,omitempty" json:"price,omitempty"`
	Prices      []PriceEntry       `bson:"prices,omitempty" json:"prices,omitempty"`
	ImageURL    string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePrice returns the price used for sorting: the direct price if
// set, otherwise the most recent price-history entry, otherwise 0.
func (p *Product) EffectivePrice() float64 {
	if p.Price != 0 {
		return p.Price
	}
	if len(p.Prices) == 0 {
		return 0
	}
	latest := p.Prices[0]
	for _, e := range p.Prices[1:] {
		if e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest.Price
}

// MarketPrice is an aggregation result row: one product per market.
type MarketPrice struct {
	Market    string             `bson:"_id" json:"market"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	ImageURL  string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
