package wishlist

import (
	"context"
	"testing"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	items  map[string]*domain.WishlistItem
	addErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[string]*domain.WishlistItem)}
}

func (m *mockRepository) AddItem(_ context.Context, item *domain.WishlistItem) error {
	if m.addErr != nil {
		return m.addErr
	}
	item.ID = primitive.NewObjectID()
	m.items[item.ID.Hex()] = item
	return nil
}

func (m *mockRepository) GetItemByID(_ context.Context, id string) (*domain.WishlistItem, error) {
	if item, ok := m.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, ErrItemNotFound
}

func (m *mockRepository) GetItemByProductAndUser(_ context.Context, productID, userEmail string) (*domain.WishlistItem, error) {
	for _, item := range m.items {
		if item.ProductID.Hex() == productID && item.UserEmail == userEmail {
			copied := *item
			return &copied, nil
		}
	}
	return nil, ErrItemNotFound
}

func (m *mockRepository) ListItemsByUser(_ context.Context, userEmail string) ([]domain.WishlistItem, error) {
	result := make([]domain.WishlistItem, 0)
	for _, item := range m.items {
		if item.UserEmail == userEmail {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockRepository) DeleteItem(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func TestAddItem_OwnerTakenFromSubject(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	// Act
	item, err := service.AddItem(context.Background(), AddItemInput{
		ProductID:   primitive.NewObjectID().Hex(),
		UserEmail:   "Buyer@Example.COM",
		ProductName: "Hilsa",
		Market:      "Karwan Bazar",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", item.UserEmail)
	assert.False(t, item.ID.IsZero())
}

func TestAddItem_DuplicateConflicts(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)
	productID := primitive.NewObjectID().Hex()

	input := AddItemInput{ProductID: productID, UserEmail: "buyer@example.com"}
	_, err := service.AddItem(context.Background(), input)
	require.NoError(t, err)

	// Act
	_, err = service.AddItem(context.Background(), input)

	// Assert
	assert.ErrorIs(t, err, ErrItemExists)
}

func TestAddItem_LostInsertRaceConflicts(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.addErr = ErrItemExists
	service := NewService(repo)

	// Act
	_, err := service.AddItem(context.Background(), AddItemInput{
		ProductID: primitive.NewObjectID().Hex(),
		UserEmail: "buyer@example.com",
	})

	// Assert
	assert.ErrorIs(t, err, ErrItemExists)
}

func TestAddItem_InvalidProductID(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository())

	// Act
	_, err := service.AddItem(context.Background(), AddItemInput{
		ProductID: "nope",
		UserEmail: "buyer@example.com",
	})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDeleteItem_NonOwnerForbidden(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	item, err := service.AddItem(context.Background(), AddItemInput{
		ProductID: primitive.NewObjectID().Hex(),
		UserEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	// Act
	err = service.DeleteItem(context.Background(), item.ID.Hex(), "other@example.com")

	// Assert
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestDeleteItem_SecondDeleteIsNotFound(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	item, err := service.AddItem(context.Background(), AddItemInput{
		ProductID: primitive.NewObjectID().Hex(),
		UserEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteItem(context.Background(), item.ID.Hex(), "buyer@example.com"))

	// Act
	err = service.DeleteItem(context.Background(), item.ID.Hex(), "buyer@example.com")

	// Assert
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestListByUser_OnlyOwnItems(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	_, err := service.AddItem(context.Background(), AddItemInput{
		ProductID: primitive.NewObjectID().Hex(),
		UserEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	_, err = service.AddItem(context.Background(), AddItemInput{
		ProductID: primitive.NewObjectID().Hex(),
		UserEmail: "other@example.com",
	})
	require.NoError(t, err)

	// Act
	items, err := service.ListByUser(context.Background(), "buyer@example.com")

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "buyer@example.com", items[0].UserEmail)
}
