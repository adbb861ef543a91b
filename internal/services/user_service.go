// internal/services/user_service.go
package services

import (
	"context"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/repository"
	apperrors "qrstudio-backend/pkg/errors"
)

type UserService interface {
	// EnsureUser returns the user for identity, creating it on first use.
	EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	if identity.IsGuest() {
		return nil, apperrors.NewUnauthorizedError("Authentication required")
	}
	return s.userRepo.Upsert(ctx, identity)
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByUserID(ctx, userID)
}
