package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"prompthub/internal/config"
	"prompthub/internal/domain"
	"prompthub/internal/domain/models"
	"prompthub/internal/domain/repositories"
	"prompthub/internal/domain/services"
)

// ProfileService implements the ProfileService interface
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	logger      *slog.Logger

	// users whose profile row is known to exist in this process
	ensured sync.Map
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

var _ services.ProfileService = (*ProfileService)(nil)

// EnsureProfile creates the profile row once per user per process. Folder and
// document rows reference it, so it must exist before the first write.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID string) error {
	if _, ok := s.ensured.Load(userID); ok {
		return nil
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return &domain.ValidationError{Message: "invalid user ID format"}
	}
	if _, err := s.profileRepo.Ensure(ctx, id); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	s.ensured.Store(userID, struct{}{})
	s.logger.Debug("profile ensured", "user_id", userID)
	return nil
}

// GetProfile returns the profile, creating it on first access
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	p, err := s.profileRepo.Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	s.ensured.Store(userID.String(), struct{}{})
	p.Email = email
	return p, nil
}

// UpdateProfile applies a partial update. An absent display_name changes nothing,
// null or blank clears it.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, email string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	if !req.DisplayName.Present {
		return s.GetProfile(ctx, userID, email)
	}

	var name *string
	if req.DisplayName.Value != nil {
		trimmed := strings.TrimSpace(*req.DisplayName.Value)
		if err := validation.Validate(trimmed, validation.Length(0, config.MaxDisplayNameLength)); err != nil {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("display_name: %v", err)}
		}
		if trimmed != "" {
			name = &trimmed
		}
	}

	if _, err := s.profileRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	p, err := s.profileRepo.UpdateDisplayName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	p.Email = email

	s.logger.Info("profile updated", "user_id", userID)
	return p, nil
}
