package docsystem

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"user_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FolderDeletion reports what a cascading folder delete removed.
type FolderDeletion struct {
	FolderIDs   []string `json:"deleted_folder_ids"`
	DocumentIDs []string `json:"deleted_document_ids"`
}
