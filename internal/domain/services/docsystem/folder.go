package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Folder, error)

	// RenameFolder renames a folder, rejecting duplicates among its siblings
	RenameFolder(ctx context.Context, userID, folderID string, req *RenameFolderRequest) (*docsystem.Folder, error)

	// DeleteFolder deletes a folder with everything below it
	DeleteFolder(ctx context.Context, userID, folderID string) (*docsystem.FolderDeletion, error)

	// ListFolders lists child folders of parentID (nil = root)
	ListFolders(ctx context.Context, userID string, parentID *string) ([]docsystem.Folder, error)

	// ListDocuments lists document summaries of a folder
	ListDocuments(ctx context.Context, userID, folderID string) ([]docsystem.DocumentSummary, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID   string  `json:"-"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}
