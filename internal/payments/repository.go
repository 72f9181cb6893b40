package payments

import (
	"context"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for order data operations.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrdersByUser(ctx context.Context, userEmail string) ([]domain.Order, error)
}
