package ads

import (
	"context"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for advertisement data operations.
type Repository interface {
	CreateAd(ctx context.Context, ad *domain.Advertisement) error
	GetAdByID(ctx context.Context, id string) (*domain.Advertisement, error)
	ListAds(ctx context.Context, filter AdFilter) ([]domain.Advertisement, error)
	UpdateAd(ctx context.Context, ad *domain.Advertisement) error
	UpdateAdStatus(ctx context.Context, id string, status domain.AdStatus) error
	DeleteAd(ctx context.Context, id string) error

	// ExpireOverdue marks approved ads whose expiresAt has passed as
	// expired and returns how many were swept.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// AdFilter represents filter criteria for listing advertisements.
type AdFilter struct {
	Status      *domain.AdStatus
	VendorEmail *string
}
