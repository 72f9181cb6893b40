package reviews

import (
	"context"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for review data operations.
type Repository interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReviewByID(ctx context.Context, id string) (*domain.Review, error)
	GetReviewByProductAndUser(ctx context.Context, productID, userEmail string) (*domain.Review, error)
	ListReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	UpdateReview(ctx context.Context, id string, rating int, comment string) error
	DeleteReview(ctx context.Context, id string) error
}
