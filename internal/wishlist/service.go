// Package wishlist provides HTTP handlers and business logic for user wishlists.
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors for the wishlist module.
var (
	ErrItemNotFound = errors.New("wishlist item not found")
	ErrItemExists   = errors.New("product already in wishlist")
	ErrInvalidID    = errors.New("invalid id")
	ErrNotOwner     = errors.New("not the wishlist owner")
)

// Service implements wishlist business logic.
type Service struct {
	repo Repository
}

// NewService creates a new wishlist service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddItemInput holds data for adding a wishlist item.
type AddItemInput struct {
	ProductID   string
	UserEmail   string
	ProductName string
	Market      string
}

// AddItem bookmarks a product for the user, one item per
// (productId, userEmail). The unique index closes the concurrent-add race.
func (s *Service) AddItem(ctx context.Context, input AddItemInput) (*domain.WishlistItem, error) {
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	userEmail := domain.NormalizeSubject(input.UserEmail)

	existing, err := s.repo.GetItemByProductAndUser(ctx, input.ProductID, userEmail)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, fmt.Errorf("check existing wishlist item: %w", err)
	}
	if existing != nil {
		return nil, ErrItemExists
	}

	item := &domain.WishlistItem{
		ProductID:   productID,
		UserEmail:   userEmail,
		ProductName: input.ProductName,
		Market:      input.Market,
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListByUser returns the caller's wishlist.
func (s *Service) ListByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error) {
	return s.repo.ListItemsByUser(ctx, domain.NormalizeSubject(userEmail))
}

// DeleteItem removes a wishlist entry, owner only. Deleting an id that is
// already gone reports not-found, not a fault.
func (s *Service) DeleteItem(ctx context.Context, id, subject string) error {
	item, err := s.repo.GetItemByID(ctx, id)
	if err != nil {
		return err
	}
	if item.UserEmail != domain.NormalizeSubject(subject) {
		return ErrNotOwner
	}

	return s.repo.DeleteItem(ctx, id)
}
