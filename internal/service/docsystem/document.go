package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prompthub/internal/config"
	"prompthub/internal/domain"
	models "prompthub/internal/domain/models/docsystem"
	"prompthub/internal/domain/repositories"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     docsysRepo.DocumentRepository
	versionRepo docsysRepo.VersionRepository
	txManager   repositories.TransactionManager
	validator   *ResourceValidator
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	versionRepo docsysRepo.VersionRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		validator:   validator,
		logger:      logger,
	}
}

// CreateDocument creates a new document in a folder the caller owns.
// A missing title stays NULL until the user names the document.
func (s *documentService) CreateDocument(ctx context.Context, req *docsysSvc.CreateDocumentRequest) (*models.Document, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			req.Title = nil
		} else {
			req.Title = &trimmed
		}
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateFolder(ctx, req.FolderID, req.UserID); err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := s.validator.EnsureUniqueTitle(ctx, req.FolderID, *req.Title, req.UserID, ""); err != nil {
			return nil, err
		}
	}

	doc := &models.Document{
		OwnerID:  req.UserID,
		FolderID: req.FolderID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"doc_id", doc.ID,
		"folder_id", doc.FolderID,
		"user_id", req.UserID,
	)

	return doc, nil
}

// GetDocument retrieves a document by ID
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	return s.docRepo.GetByID(ctx, documentID, userID)
}

// RenameDocument changes the title of a document
func (s *documentService) RenameDocument(ctx context.Context, userID, documentID string, req *docsysSvc.RenameDocumentRequest) (*models.Document, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.Title, titleRules...),
	)); err != nil {
		return nil, err
	}

	current, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.EnsureUniqueTitle(ctx, current.FolderID, req.Title, userID, documentID); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.Rename(ctx, documentID, userID, &req.Title)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document renamed", "doc_id", documentID, "user_id", userID)
	return doc, nil
}

// AutoSave persists content without creating a version. Title changes ride
// along when non-empty; an empty title leaves the stored one alone.
func (s *documentService) AutoSave(ctx context.Context, userID, documentID string, req *docsysSvc.AutoSaveRequest) (*models.Document, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}

	var title *string
	if t := strings.TrimSpace(req.Title); t != "" {
		if len(t) > config.MaxTitleLength {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("title: the length must be no more than %d", config.MaxTitleLength)}
		}
		title = &t
	}

	doc, err := s.docRepo.UpdateContent(ctx, documentID, userID, title, req.Content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document auto-saved",
		"doc_id", documentID,
		"user_id", userID,
		"content_len", len(req.Content),
	)
	return doc, nil
}

// SaveVersion records a diff between the content of the previous explicit save
// and the new content, then commits title and content as the new base. Both
// writes happen in one transaction.
func (s *documentService) SaveVersion(ctx context.Context, userID, documentID string, req *docsysSvc.SaveVersionRequest) (*models.Version, *models.Document, error) {
	if err := validateID(documentID); err != nil {
		return nil, nil, err
	}
	title := strings.TrimSpace(req.Title)
	if err := validateVersionTitle(title); err != nil {
		return nil, nil, err
	}

	var (
		version *models.Version
		doc     *models.Document
	)
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.docRepo.GetByID(txCtx, documentID, userID)
		if err != nil {
			return err
		}
		if err := s.validator.EnsureUniqueTitle(txCtx, current.FolderID, title, userID, documentID); err != nil {
			return err
		}

		base, err := s.docRepo.GetBaseContent(txCtx, documentID, userID)
		if err != nil {
			return err
		}

		version = &models.Version{
			DocumentID: documentID,
			Title:      title,
			Diff:       MakePatch(base, req.Content),
		}
		if err := s.versionRepo.Create(txCtx, version); err != nil {
			return err
		}

		doc, err = s.docRepo.CommitVersion(txCtx, documentID, userID, title, req.Content)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("document version saved",
		"doc_id", documentID,
		"version_id", version.ID,
		"user_id", userID,
	)
	return version, doc, nil
}

// ListVersions lists the explicit saves of a document
func (s *documentService) ListVersions(ctx context.Context, userID, documentID string) ([]models.Version, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	if _, err := s.docRepo.GetByID(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByDocument(ctx, documentID)
}

// GetVersion rebuilds the content of a version by replaying every patch up to it
// on top of the creation content.
func (s *documentService) GetVersion(ctx context.Context, userID, documentID string, versionID int64) (*models.VersionContent, error) {
	versions, err := s.ListVersions(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	origin, err := s.versionRepo.GetOriginContent(ctx, documentID)
	if err != nil {
		return nil, err
	}

	patches := make([]string, 0, len(versions))
	for _, v := range versions {
		patches = append(patches, v.Diff)
		if v.ID != versionID {
			continue
		}
		content, err := ApplyPatches(origin, patches)
		if err != nil {
			return nil, fmt.Errorf("rebuild version %d: %w", versionID, err)
		}
		return &models.VersionContent{Version: v, Content: content}, nil
	}

	return nil, fmt.Errorf("version %d: %w", versionID, domain.ErrNotFound)
}

// DeleteDocument deletes a document
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := validateID(documentID); err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		"doc_id", documentID,
		"user_id", userID,
	)

	return nil
}

// ValidateDocuments drops ids that are malformed, missing, or not owned by userID
func (s *documentService) ValidateDocuments(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) > config.MaxValidateIDs {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("ids: at most %d ids per request", config.MaxValidateIDs)}
	}

	wellFormed := make([]string, 0, len(ids))
	for _, id := range ids {
		if validateID(id) == nil {
			wellFormed = append(wellFormed, id)
		}
	}
	return s.docRepo.ExistingIDs(ctx, wellFormed, userID)
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *docsysSvc.CreateDocumentRequest) error {
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.FolderID, validation.Required, isUUID),
		validation.Field(&req.Title, validation.Length(1, config.MaxTitleLength)),
	))
}

func validateID(id string) error {
	if err := validation.Validate(id, validation.Required, isUUID); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("id: %v", err)}
	}
	return nil
}
