package docsystem

import (
	"context"
	"log/slog"

	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo   docsysRepo.FolderRepository
	documentRepo docsysRepo.DocumentRepository
	logger       *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo docsysRepo.FolderRepository,
	documentRepo docsysRepo.DocumentRepository,
	logger *slog.Logger,
) docsysSvc.TreeService {
	return &treeService{
		folderRepo:   folderRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// GetTree builds the nested folder/document tree of a user.
// Folders whose parent is missing are promoted to roots.
func (s *treeService) GetTree(ctx context.Context, userID string) (*models.TreeNode, error) {
	allFolders, err := s.folderRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	allDocuments, err := s.documentRepo.ListSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Build folder hierarchy using 3-pass algorithm
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	var rootFolderIDs []string

	// First pass: create all folder nodes
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Documents: []models.DocumentTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootFolderIDs = append(rootFolderIDs, folder.ID)
			continue
		}
		if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		} else {
			rootFolderIDs = append(rootFolderIDs, folder.ID)
		}
	}

	// Third pass: add documents to their folders
	for _, doc := range allDocuments {
		if parent, exists := folderMap[doc.FolderID]; exists {
			parent.Documents = append(parent.Documents, models.DocumentTreeNode{
				ID:        doc.ID,
				Title:     doc.DisplayTitle(),
				FolderID:  doc.FolderID,
				UpdatedAt: doc.UpdatedAt,
			})
		}
	}

	rootFolders := make([]*models.FolderTreeNode, 0, len(rootFolderIDs))
	for _, folderID := range rootFolderIDs {
		rootFolders = append(rootFolders, folderMap[folderID])
	}

	s.logger.Debug("tree built",
		"user_id", userID,
		"folder_count", len(allFolders),
		"document_count", len(allDocuments),
	)

	return &models.TreeNode{Folders: rootFolders}, nil
}
