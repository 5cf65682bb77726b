package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents.
// Every method is scoped by ownerID; a document owned by someone else is
// reported as not found.
type DocumentRepository interface {
	// Create creates a new document. Content also becomes the base and origin content.
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id, ownerID string) (*docsystem.Document, error)

	// GetByTitle finds a document in folderID whose title matches case-insensitively
	GetByTitle(ctx context.Context, folderID, title, ownerID string) (*docsystem.Document, error)

	// GetBaseContent returns the content as of the last explicit save
	GetBaseContent(ctx context.Context, id, ownerID string) (string, error)

	// UpdateContent persists content (and title when non-nil) without touching the
	// base content. This is the auto-save path.
	UpdateContent(ctx context.Context, id, ownerID string, title *string, content string) (*docsystem.Document, error)

	// CommitVersion sets title, content and base content in one statement
	CommitVersion(ctx context.Context, id, ownerID, title, content string) (*docsystem.Document, error)

	// Rename changes the title
	Rename(ctx context.Context, id, ownerID string, title *string) (*docsystem.Document, error)

	// Delete deletes a document
	Delete(ctx context.Context, id, ownerID string) error

	// ListByFolder lists document summaries in a folder, sorted by title
	ListByFolder(ctx context.Context, folderID, ownerID string) ([]docsystem.DocumentSummary, error)

	// ListSummaries lists every document summary the owner has (no content)
	ListSummaries(ctx context.Context, ownerID string) ([]docsystem.DocumentSummary, error)

	// ExistingIDs filters ids down to the ones that exist and belong to ownerID
	ExistingIDs(ctx context.Context, ids []string, ownerID string) ([]string, error)

	// ListRecent returns the most recently updated documents
	ListRecent(ctx context.Context, ownerID string, limit int) ([]docsystem.DocumentSummary, error)

	// Count returns how many documents the owner has
	Count(ctx context.Context, ownerID string) (int, error)
}

// VersionRepository stores the explicit-save history of documents.
type VersionRepository interface {
	// Create appends a version row and fills in ID and CreatedAt
	Create(ctx context.Context, v *docsystem.Version) error

	// ListByDocument lists versions oldest first
	ListByDocument(ctx context.Context, documentID string) ([]docsystem.Version, error)

	// GetOriginContent returns the content the document was created with
	GetOriginContent(ctx context.Context, documentID string) (string, error)

	// Count returns how many versions exist across the owner's documents
	Count(ctx context.Context, ownerID string) (int, error)
}
