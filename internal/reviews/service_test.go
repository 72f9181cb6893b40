package reviews

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
	reviews   map[string]*domain.Review
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{reviews: make(map[string]*domain.Review)}
}

func (m *mockRepository) CreateReview(_ context.Context, review *domain.Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.reviews {
		if r.ProductID == review.ProductID && r.UserEmail == review.UserEmail {
			return ErrReviewExists
		}
	}
	review.ID = primitive.NewObjectID()
	m.reviews[review.ID.Hex()] = review
	return nil
}

func (m *mockRepository) GetReviewByID(_ context.Context, id string) (*domain.Review, error) {
	if r, ok := m.reviews[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, ErrReviewNotFound
}

func (m *mockRepository) GetReviewByProductAndUser(_ context.Context, productID, userEmail string) (*domain.Review, error) {
	for _, r := range m.reviews {
		if r.ProductID.Hex() == productID && r.UserEmail == userEmail {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (m *mockRepository) ListReviewsByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	result := make([]domain.Review, 0)
	for _, r := range m.reviews {
		if r.ProductID.Hex() == productID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRepository) UpdateReview(_ context.Context, id string, rating int, comment string) error {
	r, ok := m.reviews[id]
	if !ok {
		return ErrReviewNotFound
	}
	r.Rating = rating
	r.Comment = comment
	return nil
}

func (m *mockRepository) DeleteReview(_ context.Context, id string) error {
	if _, ok := m.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func validInput(productID primitive.ObjectID) CreateReviewInput {
	return CreateReviewInput{
		ProductID: productID.Hex(),
		UserEmail: "buyer@example.com",
		Rating:    4,
		Comment:   "fresh mangoes",
	}
}

func TestCreateReview_ReturnsStoredDocument(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)
	productID := primitive.NewObjectID()

	// Act
	review, err := service.CreateReview(context.Background(), validInput(productID))

	// Assert
	require.NoError(t, err)
	assert.False(t, review.ID.IsZero(), "response must carry the server-assigned id")
	assert.Equal(t, productID, review.ProductID)
	assert.Equal(t, "buyer@example.com", review.UserEmail)
}

func TestCreateReview_SecondReviewSameProductConflicts(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)
	productID := primitive.NewObjectID()

	_, err := service.CreateReview(context.Background(), validInput(productID))
	require.NoError(t, err)

	// Act
	_, err = service.CreateReview(context.Background(), validInput(productID))

	// Assert
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestCreateReview_LostInsertRaceConflicts(t *testing.T) {
	// Arrange: the pre-check sees nothing but the insert hits the unique index.
	repo := newMockRepository()
	repo.createErr = ErrReviewExists
	service := NewService(repo)

	// Act
	_, err := service.CreateReview(context.Background(), validInput(primitive.NewObjectID()))

	// Assert
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestCreateReview_InvalidProductID(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository())

	// Act
	_, err := service.CreateReview(context.Background(), CreateReviewInput{
		ProductID: "not-a-hex-id",
		UserEmail: "buyer@example.com",
		Rating:    3,
	})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestUpdateReview_OwnerComparisonIsCaseSensitive(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	review, err := service.CreateReview(context.Background(), validInput(primitive.NewObjectID()))
	require.NoError(t, err)

	// Act: stored email is lowercase, caller subject differs in case only.
	_, err = service.UpdateReview(context.Background(), review.ID.Hex(), "Buyer@example.com", 5, "edited")

	// Assert
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateReview_Owner(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	review, err := service.CreateReview(context.Background(), validInput(primitive.NewObjectID()))
	require.NoError(t, err)

	// Act
	updated, err := service.UpdateReview(context.Background(), review.ID.Hex(), "buyer@example.com", 5, "edited")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "edited", updated.Comment)
}

func TestDeleteReview_NonOwnerForbidden(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	review, err := service.CreateReview(context.Background(), validInput(primitive.NewObjectID()))
	require.NoError(t, err)

	// Act
	err = service.DeleteReview(context.Background(), review.ID.Hex(), "other@example.com")

	// Assert
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestDeleteReview_SecondDeleteIsNotFound(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo)

	review, err := service.CreateReview(context.Background(), validInput(primitive.NewObjectID()))
	require.NoError(t, err)

	require.NoError(t, service.DeleteReview(context.Background(), review.ID.Hex(), "buyer@example.com"))

	// Act
	err = service.DeleteReview(context.Background(), review.ID.Hex(), "buyer@example.com")

	// Assert
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
