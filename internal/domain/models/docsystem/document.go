package docsystem

import (
	"strings"
	"time"
)

// UntitledDisplayTitle is shown in listings and tabs for documents without a title.
const UntitledDisplayTitle = "[Untitled Doc]"

// DefaultNewTitle is the title given to documents created without one.
const DefaultNewTitle = "Untitled Prompt"

type Document struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"user_id"`
	FolderID  string    `json:"folder_id" db:"folder_id"`
	Title     *string   `json:"title" db:"title"` // NULL until the user names it
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TitleOrEmpty dereferences Title.
func (d *Document) TitleOrEmpty() string {
	if d.Title == nil {
		return ""
	}
	return *d.Title
}

// Summary strips the content for listings.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		FolderID:  d.FolderID,
		Title:     d.Title,
		UpdatedAt: d.UpdatedAt,
	}
}

// DocumentSummary is a document as it appears in a folder listing (no content).
type DocumentSummary struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folder_id"`
	Title     *string   `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the title with the untitled fallback applied.
func (s DocumentSummary) DisplayTitle() string {
	if s.Title == nil {
		return UntitledDisplayTitle
	}
	return DisplayTitle(*s.Title)
}

// DisplayTitle maps blank titles to UntitledDisplayTitle.
func DisplayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return UntitledDisplayTitle
	}
	return title
}

// IsPlaceholderTitle reports whether title is one of the generated defaults that
// an explicit save must not accept.
func IsPlaceholderTitle(title string) bool {
	t := strings.TrimSpace(title)
	return strings.EqualFold(t, UntitledDisplayTitle) || strings.EqualFold(t, DefaultNewTitle)
}

// Version is one explicit save of a document. Diff is a patch in
// diff-match-patch text format from the previous version's content.
type Version struct {
	ID         int64     `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Title      string    `json:"title" db:"title"`
	Diff       string    `json:"diff" db:"diff"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// VersionContent is a version with its content reconstructed from the patch chain.
type VersionContent struct {
	Version
	Content string `json:"content"`
}
