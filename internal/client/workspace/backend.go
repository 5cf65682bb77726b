package workspace

import (
	"context"

	"prompthub/internal/client/api"
	"prompthub/internal/domain/models"
	"prompthub/internal/domain/models/docsystem"
)

// Backend is the authoritative storage the workspace talks to. *api.Client
// implements it.
type Backend interface {
	SetToken(token string)

	Snapshot(ctx context.Context) (*docsystem.WorkspaceSnapshot, error)
	Tree(ctx context.Context) (*docsystem.TreeNode, error)
	Dashboard(ctx context.Context) (*docsystem.DashboardMetrics, error)
	Profile(ctx context.Context) (*models.Profile, error)
	UpdateDisplayName(ctx context.Context, name *string) (*models.Profile, error)

	ListDocuments(ctx context.Context, folderID string) ([]docsystem.DocumentSummary, error)
	CreateFolder(ctx context.Context, name string, parentID *string) (*docsystem.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*docsystem.Folder, error)
	DeleteFolder(ctx context.Context, id string) (*docsystem.FolderDeletion, error)

	GetDocument(ctx context.Context, id string) (*docsystem.Document, error)
	CreateDocument(ctx context.Context, folderID string, title *string, content string) (*docsystem.Document, error)
	RenameDocument(ctx context.Context, id, title string) (*docsystem.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	SaveContent(ctx context.Context, id, title, content string) (*docsystem.DocumentSummary, error)
	SaveVersion(ctx context.Context, id, title, content string) (*api.SaveVersionResult, error)
	ListVersions(ctx context.Context, id string) ([]docsystem.Version, error)
	GetVersion(ctx context.Context, id string, versionID int64) (*docsystem.VersionContent, error)
	ValidateDocuments(ctx context.Context, ids []string) ([]string, error)
}

// Authenticator issues and revokes sessions. *api.AuthClient implements it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*api.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// DraftStore is a draft.Store that can also drop every draft.
type DraftStore interface {
	Read(ctx context.Context, docID string) (string, error)
	Write(ctx context.Context, docID, content string) error
	Clear(ctx context.Context, docID string) error
	ClearAll(ctx context.Context) error
}

var (
	_ Backend       = (*api.Client)(nil)
	_ Authenticator = (*api.AuthClient)(nil)
)
