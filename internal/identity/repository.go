package identity

import (
	"context"

	"github.com/hatbajar/marketplace/internal/domain"
)

// Repository defines the interface for principal record operations.
type Repository interface {
	// UpsertUser inserts the user keyed by email, or returns the existing
	// record untouched. Reports whether a new record was created.
	UpsertUser(ctx context.Context, user *domain.User) (created bool, err error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) error
}

// UserFilter represents filter criteria for listing users.
type UserFilter struct {
	// Search matches name or email as a case-insensitive substring.
	Search string
}
