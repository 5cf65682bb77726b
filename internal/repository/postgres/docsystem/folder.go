package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"prompthub/internal/domain"
	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"

	"prompthub/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const folderColumns = "id, user_id, parent_id, name, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanFolder(row pgx.Row, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, parent_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, folder.OwnerID, folder.ParentID, folder.Name).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.duplicateName(ctx, folder.ParentID, folder.Name, folder.OwnerID)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, id, ownerID), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetByName finds a sibling folder by case-insensitive name
func (r *PostgresFolderRepository) GetByName(ctx context.Context, parentID *string, name, ownerID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND lower(name) = lower($3)
		LIMIT 1
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, ownerID, parentID, name), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder named %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}

	return &folder, nil
}

func (r *PostgresFolderRepository) duplicateName(ctx context.Context, parentID *string, name, ownerID string) error {
	existing, err := r.GetByName(ctx, parentID, name, ownerID)
	if err != nil {
		return fmt.Errorf("folder '%s' already exists here: %w", name, domain.ErrConflict)
	}
	return domain.NewDuplicateFolderError(name, existing.ID)
}

// Rename changes the folder name
func (r *PostgresFolderRepository) Rename(ctx context.Context, id, ownerID, name string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, r.tables.Folders, folderColumns)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, id, ownerID, name), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return nil, fmt.Errorf("folder '%s' already exists here: %w", name, domain.ErrConflict)
		}
		return nil, fmt.Errorf("rename folder: %w", err)
	}

	return &folder, nil
}

// Delete removes the folder subtree. Child folders and documents go through
// ON DELETE CASCADE; the ids are collected first so callers can mirror the removal.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, ownerID string) (*models.FolderDeletion, error) {
	subtree := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1 AND user_id = $2
			UNION ALL
			SELECT f.id FROM %[1]s f JOIN subtree s ON f.parent_id = s.id
		)
		SELECT 'folder', id::text FROM subtree
		UNION ALL
		SELECT 'document', d.id::text FROM %[2]s d JOIN subtree s ON d.folder_id = s.id
	`, r.tables.Folders, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, subtree, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("collect folder subtree: %w", err)
	}

	deletion := &models.FolderDeletion{FolderIDs: []string{}, DocumentIDs: []string{}}
	for rows.Next() {
		var kind, rowID string
		if err := rows.Scan(&kind, &rowID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subtree row: %w", err)
		}
		if kind == "folder" {
			deletion.FolderIDs = append(deletion.FolderIDs, rowID)
		} else {
			deletion.DocumentIDs = append(deletion.DocumentIDs, rowID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtree: %w", err)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Folders)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Debug("folder deleted",
		"folder_id", id,
		"folders", len(deletion.FolderIDs),
		"documents", len(deletion.DocumentIDs),
	)
	return deletion, nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string, ownerID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY lower(name) ASC, id ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "list child folders", query, ownerID, parentID)
}

// GetAll retrieves all folders of the owner (flat list)
func (r *PostgresFolderRepository) GetAll(ctx context.Context, ownerID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY lower(name) ASC, id ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "list folders", query, ownerID)
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// Count returns how many folders the owner has
func (r *PostgresFolderRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE user_id = $1`, r.tables.Folders)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return n, nil
}
