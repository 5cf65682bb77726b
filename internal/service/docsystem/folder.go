package docsystem

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"prompthub/internal/config"
	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// folderService implements the FolderService interface
type folderService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	validator  *ResourceValidator
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		validator:  validator,
		logger:     logger,
	}
}

// CreateFolder creates a new folder under an optional parent
func (s *folderService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.Folder, error) {
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.validator.ValidateFolder(ctx, *req.ParentID, req.UserID); err != nil {
			return nil, err
		}
	}
	if err := s.validator.EnsureUniqueFolderName(ctx, req.ParentID, req.Name, req.UserID, ""); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		OwnerID:  req.UserID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"folder_id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"user_id", req.UserID,
	)

	return folder, nil
}

// RenameFolder renames a folder
func (s *folderService) RenameFolder(ctx context.Context, userID, folderID string, req *docsysSvc.RenameFolderRequest) (*models.Folder, error) {
	if err := validateID(folderID); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := asValidationError(validation.ValidateStruct(req, folderNameField(&req.Name))); err != nil {
		return nil, err
	}

	current, err := s.folderRepo.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.EnsureUniqueFolderName(ctx, current.ParentID, req.Name, userID, folderID); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.Rename(ctx, folderID, userID, req.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "folder_id", folderID, "user_id", userID)
	return folder, nil
}

// DeleteFolder deletes a folder with its subtree
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) (*models.FolderDeletion, error) {
	if err := validateID(folderID); err != nil {
		return nil, err
	}

	deletion, err := s.folderRepo.Delete(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted",
		"folder_id", folderID,
		"user_id", userID,
		"deleted_documents", len(deletion.DocumentIDs),
	)
	return deletion, nil
}

// ListFolders lists child folders of parentID
func (s *folderService) ListFolders(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if err := validateID(*parentID); err != nil {
			return nil, err
		}
	}
	return s.folderRepo.ListChildren(ctx, parentID, userID)
}

// ListDocuments lists the documents of one folder
func (s *folderService) ListDocuments(ctx context.Context, userID, folderID string) ([]models.DocumentSummary, error) {
	if err := validateID(folderID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFolder(ctx, folderID, userID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByFolder(ctx, folderID, userID)
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *docsysSvc.CreateFolderRequest) error {
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		folderNameField(&req.Name),
		validation.Field(&req.ParentID, isUUID),
	))
}

func folderNameField(name *string) *validation.FieldRules {
	return validation.Field(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes"),
	)
}
