package services

import (
	"context"

	"github.com/google/uuid"

	"prompthub/internal/domain/models"
)

// ProfileService defines the business logic for user profiles
type ProfileService interface {
	// GetProfile returns the profile, creating it on first access
	GetProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error)

	// UpdateProfile applies a partial update
	UpdateProfile(ctx context.Context, userID uuid.UUID, email string, req *models.UpdateProfileRequest) (*models.Profile, error)
}
