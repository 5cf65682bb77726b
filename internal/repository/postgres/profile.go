package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"prompthub/internal/domain"
	"prompthub/internal/domain/models"
	"prompthub/internal/domain/repositories"
)

// PostgresProfileRepository implements the ProfileRepository interface
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProfileRepository creates a new PostgresProfileRepository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Ensure creates the profile row on first access
func (r *PostgresProfileRepository) Ensure(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, display_name, created_at, updated_at
	`, r.tables.Profiles)

	var p models.Profile
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID).Scan(&p.ID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return &p, nil
}

// UpdateDisplayName sets or clears the display name
func (r *PostgresProfileRepository) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName *string) (*models.Profile, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET display_name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, display_name, created_at, updated_at
	`, r.tables.Profiles)

	var p models.Profile
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, displayName).Scan(&p.ID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}
