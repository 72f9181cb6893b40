package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks a recorded purchase.
type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order records a completed payment. Processor secrets are never stored
// here: TransactionID is the processor's public intent id only.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber      string             `bson:"orderNumber" json:"orderNumber"`
	UserEmail        string             `bson:"userEmail" json:"userEmail"`
	ProductID        primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName      string             `bson:"productName,omitempty" json:"productName,omitempty"`
	AmountMinorUnits int64              `bson:"amountMinorUnits" json:"amountMinorUnits"`
	Currency         string             `bson:"currency" json:"currency"`
	TransactionID    string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Status           OrderStatus        `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
