package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// DocumentService handles document business logic.
// userID scopes every call; documents of other users are reported as not found.
type DocumentService interface {
	// CreateDocument creates a new document in a folder
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*docsystem.Document, error)

	// GetDocument retrieves a document with its content
	GetDocument(ctx context.Context, userID, documentID string) (*docsystem.Document, error)

	// RenameDocument changes a document title, rejecting duplicates in the folder
	RenameDocument(ctx context.Context, userID, documentID string, req *RenameDocumentRequest) (*docsystem.Document, error)

	// AutoSave persists content without recording a version
	AutoSave(ctx context.Context, userID, documentID string, req *AutoSaveRequest) (*docsystem.Document, error)

	// SaveVersion records a diff against the last explicit save and updates title and content
	SaveVersion(ctx context.Context, userID, documentID string, req *SaveVersionRequest) (*docsystem.Version, *docsystem.Document, error)

	// ListVersions lists the explicit saves of a document, oldest first
	ListVersions(ctx context.Context, userID, documentID string) ([]docsystem.Version, error)

	// GetVersion reconstructs the content of one version
	GetVersion(ctx context.Context, userID, documentID string, versionID int64) (*docsystem.VersionContent, error)

	// DeleteDocument deletes a document
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// ValidateDocuments returns the subset of ids that still exist for the user
	ValidateDocuments(ctx context.Context, userID string, ids []string) ([]string, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	UserID   string  `json:"-"` // Set by handler from auth context, not from request body
	FolderID string  `json:"folder_id"`
	Title    *string `json:"title,omitempty"` // Omitted or blank leaves the document untitled
	Content  string  `json:"content"`
}

// RenameDocumentRequest represents a document rename request
type RenameDocumentRequest struct {
	Title string `json:"title"`
}

// AutoSaveRequest is the body of the content-only save. An empty title leaves
// the stored title unchanged.
type AutoSaveRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SaveVersionRequest is the body of an explicit save.
type SaveVersionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
