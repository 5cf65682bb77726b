package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"prompthub/internal/domain"
	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"

	"prompthub/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) docsysRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a version row
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.Version) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, title, diff)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, v.DocumentID, v.Title, v.Diff).Scan(&v.ID, &v.CreatedAt); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", v.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// ListByDocument lists versions oldest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, title, diff, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY id ASC
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []models.Version{}
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Title, &v.Diff, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// GetOriginContent returns the content the document was created with
func (r *PostgresVersionRepository) GetOriginContent(ctx context.Context, documentID string) (string, error) {
	query := fmt.Sprintf(`SELECT origin_content FROM %s WHERE id = $1`, r.tables.Documents)

	var origin string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&origin); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get origin content: %w", err)
	}
	return origin, nil
}

// Count returns how many versions exist across the owner's documents
func (r *PostgresVersionRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT count(*)
		FROM %s v
		JOIN %s d ON d.id = v.document_id
		WHERE d.user_id = $1
	`, r.tables.Versions, r.tables.Documents)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}
