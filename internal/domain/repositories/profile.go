package repositories

import (
	"context"

	"github.com/google/uuid"

	"prompthub/internal/domain/models"
)

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// Ensure creates the profile row if it does not exist yet and returns it
	Ensure(ctx context.Context, userID uuid.UUID) (*models.Profile, error)

	// UpdateDisplayName sets or clears the display name
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName *string) (*models.Profile, error)
}
