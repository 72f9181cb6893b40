// Package reviews provides HTTP handlers and business logic for product reviews.
package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors for the reviews module.
var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists for this product")
	ErrInvalidID      = errors.New("invalid id")
	ErrNotOwner       = errors.New("not the review owner")
)

// Service implements review business logic.
type Service struct {
	repo Repository
}

// NewService creates a new review service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateReviewInput holds data for creating a review.
type CreateReviewInput struct {
	ProductID string
	UserEmail string
	UserName  string
	Rating    int
	Comment   string
}

// CreateReview stores a review, one per (productId, userEmail). The
// existence check gives the common case a clean conflict; the unique index
// catches the race between two concurrent submissions. Returns the stored
// document, server-assigned fields included.
func (s *Service) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	userEmail := domain.NormalizeSubject(input.UserEmail)

	existing, err := s.repo.GetReviewByProductAndUser(ctx, input.ProductID, userEmail)
	if err != nil && !errors.Is(err, ErrReviewNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	review := &domain.Review{
		ProductID: productID,
		UserEmail: userEmail,
		UserName:  input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return s.repo.GetReviewByID(ctx, review.ID.Hex())
}

// ListByProduct returns a product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.repo.ListReviewsByProduct(ctx, productID)
}

// UpdateReview edits a review's rating and comment. Only the subject that
// created the review may edit it; the comparison is case-sensitive against
// the stored userEmail field.
func (s *Service) UpdateReview(ctx context.Context, id, subject string, rating int, comment string) (*domain.Review, error) {
	review, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserEmail != subject {
		return nil, ErrNotOwner
	}

	if err := s.repo.UpdateReview(ctx, id, rating, comment); err != nil {
		return nil, err
	}

	return s.repo.GetReviewByID(ctx, id)
}

// DeleteReview removes a review, owner only. A second delete of the same id
// reports not-found, not a fault.
func (s *Service) DeleteReview(ctx context.Context, id, subject string) error {
	review, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserEmail != subject {
		return ErrNotOwner
	}

	return s.repo.DeleteReview(ctx, id)
}
