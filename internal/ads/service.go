// Package ads provides HTTP handlers and business logic for vendor advertisements.
package ads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Sentinel errors for the ads module.
var (
	ErrAdNotFound    = errors.New("advertisement not found")
	ErrInvalidID     = errors.New("invalid advertisement id")
	ErrInvalidStatus = errors.New("invalid advertisement status")
	ErrNotOwner      = errors.New("not the advertisement owner")
	ErrExpiryInPast  = errors.New("expiry must be in the future")
)

// Service implements advertisement business logic.
type Service struct {
	repo Repository
}

// NewService creates a new ads service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAdInput holds data for creating an advertisement.
type CreateAdInput struct {
	VendorEmail string
	Title       string
	Description string
	ImageURL    string
	ExpiresAt   time.Time
}

// CreateAd stores a new advertisement awaiting moderation.
func (s *Service) CreateAd(ctx context.Context, input CreateAdInput) (*domain.Advertisement, error) {
	if !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrExpiryInPast
	}

	ad := &domain.Advertisement{
		VendorEmail: domain.NormalizeSubject(input.VendorEmail),
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Status:      domain.AdStatusPending,
		ExpiresAt:   input.ExpiresAt.UTC(),
	}

	if err := s.repo.CreateAd(ctx, ad); err != nil {
		return nil, fmt.Errorf("create advertisement: %w", err)
	}
	return ad, nil
}

// ListActive returns approved, unexpired ads for the storefront.
func (s *Service) ListActive(ctx context.Context) ([]domain.Advertisement, error) {
	status := domain.AdStatusApproved
	active, err := s.repo.ListAds(ctx, AdFilter{Status: &status})
	if err != nil {
		return nil, err
	}

	// The expiry worker sweeps on an interval; drop anything it has not
	// caught up with yet.
	now := time.Now().UTC()
	kept := make([]domain.Advertisement, 0, len(active))
	for _, ad := range active {
		if ad.ExpiresAt.After(now) {
			kept = append(kept, ad)
		}
	}
	return kept, nil
}

// ListByVendor returns the vendor's own ads, any status.
func (s *Service) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Advertisement, error) {
	email := domain.NormalizeSubject(vendorEmail)
	return s.repo.ListAds(ctx, AdFilter{VendorEmail: &email})
}

// ListAll returns every advertisement (admin view).
func (s *Service) ListAll(ctx context.Context) ([]domain.Advertisement, error) {
	return s.repo.ListAds(ctx, AdFilter{})
}

// UpdateAdInput holds data for editing an advertisement.
type UpdateAdInput struct {
	Title       string
	Description string
	ImageURL    string
	ExpiresAt   time.Time
}

// UpdateAd edits a vendor's own ad and sends it back to moderation.
func (s *Service) UpdateAd(ctx context.Context, id, vendorEmail string, input UpdateAdInput) (*domain.Advertisement, error) {
	ad, err := s.ownedAd(ctx, id, vendorEmail)
	if err != nil {
		return nil, err
	}
	if !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrExpiryInPast
	}

	ad.Title = input.Title
	ad.Description = input.Description
	ad.ImageURL = input.ImageURL
	ad.ExpiresAt = input.ExpiresAt.UTC()
	ad.Status = domain.AdStatusPending
	ad.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateAd(ctx, ad); err != nil {
		return nil, fmt.Errorf("update advertisement: %w", err)
	}
	return ad, nil
}

// DeleteAd removes a vendor's own advertisement.
func (s *Service) DeleteAd(ctx context.Context, id, vendorEmail string) error {
	if _, err := s.ownedAd(ctx, id, vendorEmail); err != nil {
		return err
	}
	return s.repo.DeleteAd(ctx, id)
}

// ChangeStatus moves an ad through moderation (admin only).
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.AdStatus) (*domain.Advertisement, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateAdStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetAdByID(ctx, id)
}

func (s *Service) ownedAd(ctx context.Context, id, vendorEmail string) (*domain.Advertisement, error) {
	ad, err := s.repo.GetAdByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.VendorEmail != domain.NormalizeSubject(vendorEmail) {
		return nil, ErrNotOwner
	}
	return ad, nil
}
