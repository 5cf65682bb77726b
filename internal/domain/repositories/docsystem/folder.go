package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, ownerID string) (*docsystem.Folder, error)

	// GetByName finds a sibling folder whose name matches case-insensitively
	GetByName(ctx context.Context, parentID *string, name, ownerID string) (*docsystem.Folder, error)

	// Rename changes the folder name
	Rename(ctx context.Context, id, ownerID, name string) (*docsystem.Folder, error)

	// Delete deletes a folder with its descendant folders and documents and
	// reports what was removed
	Delete(ctx context.Context, id, ownerID string) (*docsystem.FolderDeletion, error)

	// ListChildren lists immediate child folders, sorted by name
	ListChildren(ctx context.Context, parentID *string, ownerID string) ([]docsystem.Folder, error)

	// GetAll retrieves all folders of the owner (flat list)
	GetAll(ctx context.Context, ownerID string) ([]docsystem.Folder, error)

	// Count returns how many folders the owner has
	Count(ctx context.Context, ownerID string) (int, error)
}
