// internal/services/user_service.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ListCustomers returns accounts with the User role only.
func (s *UserService) ListCustomers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	return s.users.ListByRole(ctx, models.UserRoleUser, params)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// DeleteUser removes a customer account. Admin accounts are protected.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminProtected
	}
	return s.users.Delete(ctx, id)
}
