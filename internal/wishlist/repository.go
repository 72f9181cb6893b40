package wishlist

import (
	"context"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for wishlist data operations.
type Repository interface {
	AddItem(ctx context.Context, item *domain.WishlistItem) error
	GetItemByID(ctx context.Context, id string) (*domain.WishlistItem, error)
	GetItemByProductAndUser(ctx context.Context, productID, userEmail string) (*domain.WishlistItem, error)
	ListItemsByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error)
	DeleteItem(ctx context.Context, id string) error
}
