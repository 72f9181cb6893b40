package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	orders []domain.Order
}

func (m *mockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	order.ID = primitive.NewObjectID()
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockRepository) ListOrdersByUser(_ context.Context, userEmail string) ([]domain.Order, error) {
	result := make([]domain.Order, 0)
	for _, o := range m.orders {
		if o.UserEmail == userEmail {
			result = append(result, o)
		}
	}
	return result, nil
}

// mockIntentCreator implements IntentCreator for testing.
type mockIntentCreator struct {
	err          error
	calls        int
	lastAmount   int64
	lastCurrency string
	lastKey      string
}

func (m *mockIntentCreator) CreateIntent(_ context.Context, amount int64, currencyCode, idempotencyKey string) (string, string, error) {
	m.calls++
	m.lastAmount = amount
	m.lastCurrency = currencyCode
	m.lastKey = idempotencyKey
	if m.err != nil {
		return "", "", m.err
	}
	return "cs_secret", "pi_123", nil
}

func TestCreateIntent_Valid(t *testing.T) {
	// Arrange
	creator := &mockIntentCreator{}
	service := NewService(&mockRepository{}, creator)

	// Act
	intent, err := service.CreateIntent(context.Background(), 4999, "bdt")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "cs_secret", intent.ClientSecret)
	assert.Equal(t, "pi_123", intent.IntentID)
	assert.Equal(t, int64(4999), creator.lastAmount)
	assert.Equal(t, "BDT", creator.lastCurrency)
	assert.NotEmpty(t, creator.lastKey)
}

func TestCreateIntent_FreshIdempotencyKeyPerCall(t *testing.T) {
	// Arrange
	creator := &mockIntentCreator{}
	service := NewService(&mockRepository{}, creator)

	_, err := service.CreateIntent(context.Background(), 100, "USD")
	require.NoError(t, err)
	first := creator.lastKey

	// Act
	_, err = service.CreateIntent(context.Background(), 100, "USD")

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, first, creator.lastKey)
}

func TestCreateIntent_NonPositiveAmount(t *testing.T) {
	// Arrange
	creator := &mockIntentCreator{}
	service := NewService(&mockRepository{}, creator)

	for _, amount := range []int64{0, -100} {
		// Act
		_, err := service.CreateIntent(context.Background(), amount, "USD")

		// Assert
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Zero(t, creator.calls, "processor must not be reached with a bad amount")
}

func TestCreateIntent_UnknownCurrency(t *testing.T) {
	// Arrange
	creator := &mockIntentCreator{}
	service := NewService(&mockRepository{}, creator)

	// Act
	_, err := service.CreateIntent(context.Background(), 100, "XXX-NOT-ISO")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	assert.Zero(t, creator.calls)
}

func TestCreateIntent_ProcessorError(t *testing.T) {
	// Arrange
	creator := &mockIntentCreator{err: errors.New("processor unavailable")}
	service := NewService(&mockRepository{}, creator)

	// Act
	_, err := service.CreateIntent(context.Background(), 100, "USD")

	// Assert
	assert.Error(t, err)
}

func TestRecordOrder_AssignsOrderNumberAndPaidStatus(t *testing.T) {
	// Arrange
	repo := &mockRepository{}
	service := NewService(repo, &mockIntentCreator{})

	// Act
	order, err := service.RecordOrder(context.Background(), RecordOrderInput{
		UserEmail:        "Buyer@Example.com",
		ProductID:        primitive.NewObjectID().Hex(),
		ProductName:      "Hilsa",
		AmountMinorUnits: 4999,
		Currency:         "bdt",
		TransactionID:    "pi_123",
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, "buyer@example.com", order.UserEmail)
	assert.Equal(t, "BDT", order.Currency)
}

func TestRecordOrder_InvalidProductID(t *testing.T) {
	// Arrange
	service := NewService(&mockRepository{}, &mockIntentCreator{})

	// Act
	_, err := service.RecordOrder(context.Background(), RecordOrderInput{
		UserEmail:        "buyer@example.com",
		ProductID:        "nope",
		AmountMinorUnits: 100,
		Currency:         "USD",
	})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestListOrders_OnlyOwnOrders(t *testing.T) {
	// Arrange
	repo := &mockRepository{}
	service := NewService(repo, &mockIntentCreator{})

	for _, email := range []string{"buyer@example.com", "other@example.com"} {
		_, err := service.RecordOrder(context.Background(), RecordOrderInput{
			UserEmail:        email,
			ProductID:        primitive.NewObjectID().Hex(),
			AmountMinorUnits: 100,
			Currency:         "USD",
			TransactionID:    "pi_x",
		})
		require.NoError(t, err)
	}

	// Act
	orders, err := service.ListOrders(context.Background(), "buyer@example.com")

	// Assert
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "buyer@example.com", orders[0].UserEmail)
}
