// Package payments provides payment-intent creation and order records.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/currency"
)

// Sentinel errors for the payments module.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidID       = errors.New("invalid product id")
)

// IntentCreator creates a payment intent with the external processor and
// returns its client secret. The secret passes through to the caller and
// is never persisted.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currencyCode, idempotencyKey string) (clientSecret, intentID string, err error)
}

// Service implements payment business logic.
type Service struct {
	repo    Repository
	creator IntentCreator
}

// NewService creates a new payments service.
func NewService(repo Repository, creator IntentCreator) *Service {
	return &Service{repo: repo, creator: creator}
}

// Intent is the response of a successful intent creation.
type Intent struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"intentId"`
}

// CreateIntent validates the amount and currency, then delegates to the
// processor. Each call carries a fresh idempotency key.
func (s *Service) CreateIntent(ctx context.Context, amountMinorUnits int64, currencyCode string) (*Intent, error) {
	if amountMinorUnits <= 0 {
		return nil, ErrInvalidAmount
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, ErrInvalidCurrency
	}

	secret, id, err := s.creator.CreateIntent(ctx, amountMinorUnits, unit.String(), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{ClientSecret: secret, IntentID: id}, nil
}

// RecordOrderInput holds data for recording a completed payment.
type RecordOrderInput struct {
	UserEmail        string
	ProductID        string
	ProductName      string
	AmountMinorUnits int64
	Currency         string
	TransactionID    string
}

// RecordOrder stores an order after the processor confirms payment.
func (s *Service) RecordOrder(ctx context.Context, input RecordOrderInput) (*domain.Order, error) {
	if input.AmountMinorUnits <= 0 {
		return nil, ErrInvalidAmount
	}
	unit, err := currency.ParseISO(input.Currency)
	if err != nil {
		return nil, ErrInvalidCurrency
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	order := &domain.Order{
		OrderNumber:      uuid.NewString(),
		UserEmail:        domain.NormalizeSubject(input.UserEmail),
		ProductID:        productID,
		ProductName:      input.ProductName,
		AmountMinorUnits: input.AmountMinorUnits,
		Currency:         unit.String(),
		TransactionID:    input.TransactionID,
		Status:           domain.OrderStatusPaid,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	return order, nil
}

// ListOrders returns the caller's order history.
func (s *Service) ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error) {
	return s.repo.ListOrdersByUser(ctx, domain.NormalizeSubject(userEmail))
}
