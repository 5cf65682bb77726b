package docsystem

import (
	"context"
	"fmt"
	"strings"

	"prompthub/internal/config"
	"prompthub/internal/domain"
	models "prompthub/internal/domain/models/docsystem"
	docsysRepo "prompthub/internal/domain/repositories/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ResourceValidator checks that parent resources exist and belong to the caller
// before operations on child resources.
type ResourceValidator struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
) *ResourceValidator {
	return &ResourceValidator{
		folderRepo: folderRepo,
		docRepo:    docRepo,
	}
}

// ValidateFolder ensures a folder exists and is owned by userID.
// Returns domain.ErrNotFound otherwise.
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID, userID string) error {
	if _, err := v.folderRepo.GetByID(ctx, folderID, userID); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}

// EnsureUniqueTitle rejects title when another document in folderID already uses
// it, compared case-insensitively. exceptID is the document being renamed.
func (v *ResourceValidator) EnsureUniqueTitle(ctx context.Context, folderID, title, userID, exceptID string) error {
	siblings, err := v.docRepo.ListByFolder(ctx, folderID, userID)
	if err != nil {
		return err
	}
	for _, s := range siblings {
		if s.ID == exceptID || s.Title == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(*s.Title), strings.TrimSpace(title)) {
			return domain.NewDuplicateTitleError(title, s.ID)
		}
	}
	return nil
}

// EnsureUniqueFolderName rejects name when a sibling folder already uses it.
func (v *ResourceValidator) EnsureUniqueFolderName(ctx context.Context, parentID *string, name, userID, exceptID string) error {
	siblings, err := v.folderRepo.ListChildren(ctx, parentID, userID)
	if err != nil {
		return err
	}
	for _, s := range siblings {
		if s.ID != exceptID && strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return domain.NewDuplicateFolderError(name, s.ID)
		}
	}
	return nil
}

var isUUID = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("must be a valid UUID")
	}
	return nil
})

var titleRules = []validation.Rule{
	validation.Required,
	validation.Length(1, config.MaxTitleLength),
	validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("cannot be blank")
		}
		return nil
	}),
}

// validateVersionTitle enforces the explicit-save title rules: present,
// within length, and not a generated placeholder.
func validateVersionTitle(title string) error {
	if err := validation.Validate(title, titleRules...); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("title: %v", err)}
	}
	if models.IsPlaceholderTitle(title) {
		return &domain.ValidationError{Message: fmt.Sprintf("title: %q is a placeholder, choose a real title", strings.TrimSpace(title))}
	}
	return nil
}

// asValidationError converts ozzo errors into the domain validation type.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ValidationError{Message: err.Error()}
}
