package catalog

import (
	"context"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for product data operations.
type Repository interface {
	ProductFinder

	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error
	DeleteProduct(ctx context.Context, id string) error
	AppendPriceEntry(ctx context.Context, id string, entry domain.PriceEntry) error

	// Aggregations over approved listings.
	LowestPricePerMarket(ctx context.Context) ([]domain.MarketPrice, error)
	LatestPerMarket(ctx context.Context, limit int) ([]domain.MarketPrice, error)
}

// ProductFilter is the fixed, route-defined predicate a listing starts
// from. It is never influenced by caller input.
type ProductFilter struct {
	Status      *domain.ProductStatus
	VendorEmail *string
}
