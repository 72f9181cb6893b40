// Package identity manages principal records and resolves caller roles.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Sentinel errors for the identity module.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidID    = errors.New("invalid user id")
)

// Service implements principal business logic.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput holds data for registering a principal.
type RegisterInput struct {
	Name     string
	Email    string
	PhotoURL string
}

// Register stores a principal record on first login. Registration is
// idempotent: a repeated login returns the existing record with its role
// intact, so a promoted vendor or admin is never demoted by logging in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, bool, error) {
	user := &domain.User{
		Name:     input.Name,
		Email:    domain.NormalizeSubject(input.Email),
		PhotoURL: input.PhotoURL,
		Role:     domain.RoleUser,
	}

	created, err := s.repo.UpsertUser(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("register user: %w", err)
	}

	return user, created, nil
}

// RoleBySubject looks up the stored role for a subject. It satisfies
// httputil.PrincipalSource: absence of a record is reported as
// httputil.ErrPrincipalNotFound, never conflated with role "user".
func (s *Service) RoleBySubject(ctx context.Context, subject string) (domain.Role, error) {
	user, err := s.repo.GetUserByEmail(ctx, domain.NormalizeSubject(subject))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", httputil.ErrPrincipalNotFound
		}
		return "", fmt.Errorf("lookup principal %q: %w", subject, err)
	}
	return user.Role, nil
}

// ListUsers returns principals matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	return s.repo.ListUsers(ctx, filter)
}

// ChangeRole updates a principal's role.
func (s *Service) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if err := s.repo.UpdateUserRole(ctx, id, role); err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, id)
}
