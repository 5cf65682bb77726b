// Package seed fills a development database with a sample prompt library.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prompthub/internal/domain"
	docsysSvc "prompthub/internal/domain/services/docsystem"
)

// Prompt is one seeded document.
type Prompt struct {
	Title   string
	Content string
	// Versions are explicit saves applied after creation, oldest first.
	Versions []string
}

// Folder is one seeded folder with its prompts and subfolders.
type Folder struct {
	Name    string
	Prompts []Prompt
	Folders []Folder
}

// Result counts what a run created.
type Result struct {
	Folders   int
	Documents int
	Versions  int
	Skipped   int
}

// Seeder creates folders and documents through the service layer so seeded
// rows pass the same validation as user-created ones.
type Seeder struct {
	folders   docsysSvc.FolderService
	documents docsysSvc.DocumentService
	logger    *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(folders docsysSvc.FolderService, documents docsysSvc.DocumentService, logger *slog.Logger) *Seeder {
	return &Seeder{
		folders:   folders,
		documents: documents,
		logger:    logger,
	}
}

// Seed creates tree under the root for userID. Folders and documents that
// already exist are skipped, so running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context, userID string, tree []Folder) (*Result, error) {
	res := &Result{}
	for _, f := range tree {
		if err := s.seedFolder(ctx, userID, nil, f, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Seeder) seedFolder(ctx context.Context, userID string, parentID *string, f Folder, res *Result) error {
	folder, err := s.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{
		UserID:   userID,
		Name:     f.Name,
		ParentID: parentID,
	})
	var folderID string
	switch {
	case err == nil:
		folderID = folder.ID
		res.Folders++
	case errors.Is(err, domain.ErrConflict):
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.ResourceID == "" {
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}
		folderID = conflict.ResourceID
		res.Skipped++
	default:
		return fmt.Errorf("folder %q: %w", f.Name, err)
	}

	for _, p := range f.Prompts {
		if err := s.seedPrompt(ctx, userID, folderID, p, res); err != nil {
			return err
		}
	}
	for _, child := range f.Folders {
		if err := s.seedFolder(ctx, userID, &folderID, child, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPrompt(ctx context.Context, userID, folderID string, p Prompt, res *Result) error {
	title := p.Title
	doc, err := s.documents.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{
		UserID:   userID,
		FolderID: folderID,
		Title:    &title,
		Content:  p.Content,
	})
	if errors.Is(err, domain.ErrConflict) {
		res.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("document %q: %w", p.Title, err)
	}
	res.Documents++

	for _, content := range p.Versions {
		if _, _, err := s.documents.SaveVersion(ctx, userID, doc.ID, &docsysSvc.SaveVersionRequest{
			Title:   p.Title,
			Content: content,
		}); err != nil {
			return fmt.Errorf("version of %q: %w", p.Title, err)
		}
		res.Versions++
	}

	s.logger.Debug("seeded document", "doc_id", doc.ID, "folder_id", folderID)
	return nil
}

// DefaultLibrary is the sample prompt library used by cmd/seed.
func DefaultLibrary() []Folder {
	return []Folder{
		{
			Name: "Writing",
			Prompts: []Prompt{
				{
					Title:   "Blog outline",
					Content: "Write an outline for a blog post about {{topic}}.",
					Versions: []string{
						"Write a five-section outline for a blog post about {{topic}}.",
						"Write a five-section outline for a blog post about {{topic}}. Audience: {{audience}}.",
					},
				},
				{
					Title:   "Tone rewrite",
					Content: "Rewrite the following text in a {{tone}} tone:\n\n{{text}}",
				},
			},
			Folders: []Folder{
				{
					Name: "Fiction",
					Prompts: []Prompt{
						{Title: "Character sheet", Content: "Describe a character named {{name}}: appearance, motivation, flaw."},
					},
				},
			},
		},
		{
			Name: "Code",
			Prompts: []Prompt{
				{Title: "Code review", Content: "Review this diff for bugs and unclear naming:\n\n{{diff}}"},
				{Title: "Explain error", Content: "Explain this error and suggest a fix:\n\n{{error}}"},
			},
		},
	}
}
