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

const documentColumns = "id, user_id, folder_id, title, content, created_at, updated_at"

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanDocument(row pgx.Row, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FolderID,
		&doc.Title,
		&doc.Content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, content, base_content, origin_content)
		VALUES ($1, $2, $3, $4, $4, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.OwnerID,
		doc.FolderID,
		doc.Title,
		doc.Content,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.duplicateTitle(ctx, doc.FolderID, doc.TitleOrEmpty(), doc.OwnerID)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", doc.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id, ownerID), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// GetByTitle finds a document by case-insensitive title within a folder
func (r *PostgresDocumentRepository) GetByTitle(ctx context.Context, folderID, title, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1 AND user_id = $2 AND lower(title) = lower($3)
		LIMIT 1
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, folderID, ownerID, title), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document titled %q: %w", title, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document by title: %w", err)
	}

	return &doc, nil
}

// GetBaseContent returns the content as of the last explicit save.
// Row is locked when called inside a transaction so concurrent explicit saves serialize.
func (r *PostgresDocumentRepository) GetBaseContent(ctx context.Context, id, ownerID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT base_content
		FROM %s
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, r.tables.Documents)

	var base string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, ownerID).Scan(&base); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get base content: %w", err)
	}
	return base, nil
}

// UpdateContent is the auto-save write. A nil title keeps the stored one.
func (r *PostgresDocumentRepository) UpdateContent(ctx context.Context, id, ownerID string, title *string, content string) (*models.Document, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $3, title = COALESCE($4, title), updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, r.tables.Documents, documentColumns)

	var newTitle string
	if title != nil {
		newTitle = *title
	}
	return r.updateReturning(ctx, "auto-save document", id, ownerID, newTitle, query, id, ownerID, content, title)
}

// CommitVersion is the explicit-save write: content becomes the new base.
func (r *PostgresDocumentRepository) CommitVersion(ctx context.Context, id, ownerID, title, content string) (*models.Document, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, content = $4, base_content = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, r.tables.Documents, documentColumns)

	return r.updateReturning(ctx, "commit version", id, ownerID, title, query, id, ownerID, title, content)
}

// Rename changes the title
func (r *PostgresDocumentRepository) Rename(ctx context.Context, id, ownerID string, title *string) (*models.Document, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, r.tables.Documents, documentColumns)

	var newTitle string
	if title != nil {
		newTitle = *title
	}
	return r.updateReturning(ctx, "rename document", id, ownerID, newTitle, query, id, ownerID, title)
}

func (r *PostgresDocumentRepository) updateReturning(ctx context.Context, op, id, ownerID, title, query string, args ...any) (*models.Document, error) {
	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, args...), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			// Missing and foreign rows look the same on purpose
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return nil, r.duplicateTitleFor(ctx, id, ownerID, title)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

// duplicateTitleFor resolves the conflicting sibling after a unique violation on update.
func (r *PostgresDocumentRepository) duplicateTitleFor(ctx context.Context, id, ownerID, title string) error {
	current, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("document '%s' already exists in this folder: %w", title, domain.ErrConflict)
	}
	return r.duplicateTitle(ctx, current.FolderID, title, ownerID)
}

func (r *PostgresDocumentRepository) duplicateTitle(ctx context.Context, folderID, title, ownerID string) error {
	existing, err := r.GetByTitle(ctx, folderID, title, ownerID)
	if err != nil {
		// Fallback to generic conflict error if we can't find the existing document
		return fmt.Errorf("document '%s' already exists in this folder: %w", title, domain.ErrConflict)
	}
	return domain.NewDuplicateTitleError(title, existing.ID)
}

// Delete deletes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists documents in a folder
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, folderID, ownerID string) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, title, updated_at
		FROM %s
		WHERE user_id = $1 AND folder_id = $2
		ORDER BY lower(coalesce(title, '')) ASC, id ASC
	`, r.tables.Documents)

	return r.querySummaries(ctx, "list documents in folder", query, ownerID, folderID)
}

// ListSummaries lists every document of the owner without content
func (r *PostgresDocumentRepository) ListSummaries(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, title, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY lower(coalesce(title, '')) ASC, id ASC
	`, r.tables.Documents)

	return r.querySummaries(ctx, "list documents", query, ownerID)
}

// ListRecent returns the most recently updated documents
func (r *PostgresDocumentRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, title, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, r.tables.Documents)

	return r.querySummaries(ctx, "list recent documents", query, ownerID, limit)
}

func (r *PostgresDocumentRepository) querySummaries(ctx context.Context, op, query string, args ...any) ([]models.DocumentSummary, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	documents := []models.DocumentSummary{}
	for rows.Next() {
		var doc models.DocumentSummary
		if err := rows.Scan(&doc.ID, &doc.FolderID, &doc.Title, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// ExistingIDs filters ids down to documents the owner still has
func (r *PostgresDocumentRepository) ExistingIDs(ctx context.Context, ids []string, ownerID string) ([]string, error) {
	valid := []string{}
	if len(ids) == 0 {
		return valid, nil
	}

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE user_id = $1 AND id::text = ANY($2)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("validate documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		valid = append(valid, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document ids: %w", err)
	}
	return valid, nil
}

// Count returns how many documents the owner has
func (r *PostgresDocumentRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE user_id = $1`, r.tables.Documents)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
