package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"prompthub/internal/domain/models/docsystem"
)

// SaveVersionResult is the response of an explicit save.
type SaveVersionResult struct {
	VersionID int64               `json:"version_id"`
	Document  *docsystem.Document `json:"document"`
}

type createDocumentBody struct {
	FolderID string  `json:"folder_id"`
	Title    *string `json:"title,omitempty"`
	Content  string  `json:"content"`
}

type titleContentBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func documentPath(id string) string {
	return "/api/documents/" + url.PathEscape(id)
}

// GetDocument loads a document with its content.
func (c *Client) GetDocument(ctx context.Context, id string) (*docsystem.Document, error) {
	var doc docsystem.Document
	if err := c.do(ctx, http.MethodGet, documentPath(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument creates a document in folderID. A nil title leaves it untitled.
func (c *Client) CreateDocument(ctx context.Context, folderID string, title *string, content string) (*docsystem.Document, error) {
	var doc docsystem.Document
	body := createDocumentBody{FolderID: folderID, Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, "/api/documents", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RenameDocument sets a document's title.
func (c *Client) RenameDocument(ctx context.Context, id, title string) (*docsystem.Document, error) {
	var doc docsystem.Document
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPatch, documentPath(id), body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument deletes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, documentPath(id), nil, nil)
}

// SaveContent is the auto-save call: it stores content (and a non-empty
// title) without recording a version.
func (c *Client) SaveContent(ctx context.Context, id, title, content string) (*docsystem.DocumentSummary, error) {
	var summary docsystem.DocumentSummary
	body := titleContentBody{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPut, documentPath(id)+"/content", body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SaveVersion is the explicit save: it records a version and sets the title.
func (c *Client) SaveVersion(ctx context.Context, id, title, content string) (*SaveVersionResult, error) {
	var res SaveVersionResult
	body := titleContentBody{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, documentPath(id)+"/versions", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListVersions lists a document's versions, newest first.
func (c *Client) ListVersions(ctx context.Context, id string) ([]docsystem.Version, error) {
	var versions []docsystem.Version
	if err := c.do(ctx, http.MethodGet, documentPath(id)+"/versions", nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion returns one version with its reconstructed content.
func (c *Client) GetVersion(ctx context.Context, id string, versionID int64) (*docsystem.VersionContent, error) {
	var v docsystem.VersionContent
	path := fmt.Sprintf("%s/versions/%d", documentPath(id), versionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ValidateDocuments returns the subset of ids that still exist for the caller.
func (c *Client) ValidateDocuments(ctx context.Context, ids []string) ([]string, error) {
	var res struct {
		ValidIDs []string `json:"valid_ids"`
	}
	body := map[string][]string{"ids": ids}
	if err := c.do(ctx, http.MethodPost, "/api/documents/validate", body, &res); err != nil {
		return nil, err
	}
	return res.ValidIDs, nil
}
