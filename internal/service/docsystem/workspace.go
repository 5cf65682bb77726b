package docsystem

import (
	"context"
	"log/slog"
	"strings"
	"time"

	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"
)

// workspaceService implements the WorkspaceService interface
type workspaceService struct {
	folderRepo  docsysRepo.FolderRepository
	docRepo     docsysRepo.DocumentRepository
	versionRepo docsysRepo.VersionRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	versionRepo docsysRepo.VersionRepository,
	logger *slog.Logger,
) docsysSvc.WorkspaceService {
	return &workspaceService{
		folderRepo:  folderRepo,
		docRepo:     docRepo,
		versionRepo: versionRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// GetSnapshot returns every folder and document summary in one response
func (s *workspaceService) GetSnapshot(ctx context.Context, userID string) (*models.WorkspaceSnapshot, error) {
	folders, err := s.folderRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	documents, err := s.docRepo.ListSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("workspace snapshot",
		"user_id", userID,
		"folders", len(folders),
		"documents", len(documents),
	)

	return &models.WorkspaceSnapshot{
		Folders:   folders,
		Documents: documents,
		LoadedAt:  s.now().UTC(),
	}, nil
}

// GetDashboard returns counts and the most recently updated documents
func (s *workspaceService) GetDashboard(ctx context.Context, userID string) (*models.DashboardMetrics, error) {
	docs, err := s.docRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.docRepo.ListRecent(ctx, userID, models.RecentLimit)
	if err != nil {
		return nil, err
	}

	metrics := &models.DashboardMetrics{
		TotalDocuments:  docs,
		TotalFolders:    folders,
		TotalVersions:   versions,
		RecentlyUpdated: make([]models.RecentDocument, 0, len(recent)),
	}
	for _, d := range recent {
		title := models.RecentFallbackTitle
		if d.Title != nil && strings.TrimSpace(*d.Title) != "" {
			title = strings.TrimSpace(*d.Title)
		}
		metrics.RecentlyUpdated = append(metrics.RecentlyUpdated, models.RecentDocument{
			ID:        d.ID,
			Title:     title,
			FolderID:  d.FolderID,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return metrics, nil
}
