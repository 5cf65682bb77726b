package docsystem

import "time"

// WorkspaceSnapshot is the bulk read that hydrates a client's folder tree and
// per-folder listings in one round trip.
type WorkspaceSnapshot struct {
	Folders   []Folder          `json:"folders"`
	Documents []DocumentSummary `json:"documents"`
	LoadedAt  time.Time         `json:"loaded_at"`
}

// DashboardMetrics summarizes a user's workspace.
type DashboardMetrics struct {
	TotalDocuments  int              `json:"total_documents"`
	TotalFolders    int              `json:"total_folders"`
	TotalVersions   int              `json:"total_versions"`
	RecentlyUpdated []RecentDocument `json:"recently_updated"`
}

// RecentDocument is one row of the dashboard's recent activity list.
type RecentDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FolderID  string    `json:"folder_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecentLimit is how many documents the dashboard lists.
const RecentLimit = 5

// RecentFallbackTitle labels untitled documents on the dashboard.
const RecentFallbackTitle = "Untitled prompt"
