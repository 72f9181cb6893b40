// Package catalog provides HTTP handlers and business logic for vendor
// product listings: moderation, price history and the listing query engine.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Sentinel errors for the catalog module.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid product id")
	ErrInvalidStatus   = errors.New("invalid product status")
	ErrNotOwner        = errors.New("not the product owner")
)

// LatestPerMarketLimit caps the storefront "fresh arrivals" strip.
const LatestPerMarketLimit = 6

// Service implements product business logic.
type Service struct {
	repo   Repository
	engine *QueryEngine
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		engine: NewQueryEngine(repo),
	}
}

// ListApproved runs a listing query over approved products.
func (s *Service) ListApproved(ctx context.Context, q ListingQuery) (ListingResult, error) {
	status := domain.ProductStatusApproved
	return s.engine.Run(ctx, q, ProductFilter{Status: &status})
}

// ListAll runs a listing query with no status restriction (admin view).
func (s *Service) ListAll(ctx context.Context, q ListingQuery) (ListingResult, error) {
	return s.engine.Run(ctx, q, ProductFilter{})
}

// ListByVendor returns the vendor's own products, any status.
func (s *Service) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Product, error) {
	return s.repo.FindProducts(ctx, ProductFilter{VendorEmail: &vendorEmail}, "")
}

// GetProduct retrieves one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

// CreateProductInput holds data for creating a product.
type CreateProductInput struct {
	VendorEmail string
	VendorName  string
	Name        string
	Market      string
	Price       float64
	ImageURL    string
	Description string
}

// CreateProduct stores a new listing. New listings always start pending;
// an admin approves them into the public catalog.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		VendorEmail: domain.NormalizeSubject(input.VendorEmail),
		VendorName:  input.VendorName,
		Name:        input.Name,
		Market:      input.Market,
		Status:      domain.ProductStatusPending,
		Price:       input.Price,
		Prices:      []domain.PriceEntry{{Price: input.Price, Date: now}},
		ImageURL:    input.ImageURL,
		Description: input.Description,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// UpdateProductInput holds data for updating a product.
type UpdateProductInput struct {
	Name        string
	Market      string
	Price       float64
	ImageURL    string
	Description string
}

// UpdateProduct updates a vendor's own listing. Edits send the listing back
// to pending for re-moderation.
func (s *Service) UpdateProduct(ctx context.Context, id, vendorEmail string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, id, vendorEmail)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product.Name = input.Name
	product.Market = input.Market
	product.ImageURL = input.ImageURL
	product.Description = input.Description
	product.Status = domain.ProductStatusPending
	if input.Price != product.Price {
		product.Price = input.Price
		product.Prices = append(product.Prices, domain.PriceEntry{Price: input.Price, Date: now})
	}
	product.UpdatedAt = now

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a vendor's own listing.
func (s *Service) DeleteProduct(ctx context.Context, id, vendorEmail string) error {
	if _, err := s.ownedProduct(ctx, id, vendorEmail); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

// AddPriceEntry appends a price-history point and makes it the current price.
func (s *Service) AddPriceEntry(ctx context.Context, id, vendorEmail string, price float64) (*domain.Product, error) {
	if _, err := s.ownedProduct(ctx, id, vendorEmail); err != nil {
		return nil, err
	}

	entry := domain.PriceEntry{Price: price, Date: time.Now().UTC()}
	if err := s.repo.AppendPriceEntry(ctx, id, entry); err != nil {
		return nil, fmt.Errorf("append price entry: %w", err)
	}

	return s.repo.GetProductByID(ctx, id)
}

// PriceHistory returns the product's price entries, empty slice when none.
func (s *Service) PriceHistory(ctx context.Context, id string) ([]domain.PriceEntry, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Prices == nil {
		return []domain.PriceEntry{}, nil
	}
	return product.Prices, nil
}

// ChangeStatus moves a listing through moderation (admin only).
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.ProductStatus) (*domain.Product, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateProductStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetProductByID(ctx, id)
}

// LowestPricePerMarket returns the cheapest approved listing per market.
func (s *Service) LowestPricePerMarket(ctx context.Context) ([]domain.MarketPrice, error) {
	return s.repo.LowestPricePerMarket(ctx)
}

// LatestPerMarket returns the newest approved listing per market, capped.
func (s *Service) LatestPerMarket(ctx context.Context) ([]domain.MarketPrice, error) {
	return s.repo.LatestPerMarket(ctx, LatestPerMarketLimit)
}

func (s *Service) ownedProduct(ctx context.Context, id, vendorEmail string) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.VendorEmail != domain.NormalizeSubject(vendorEmail) {
		return nil, ErrNotOwner
	}
	return product, nil
}
