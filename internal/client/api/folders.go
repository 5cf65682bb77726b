package api

import (
	"context"
	"net/http"
	"net/url"

	"prompthub/internal/domain/models/docsystem"
)

type createFolderBody struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

func folderPath(id string) string {
	return "/api/folders/" + url.PathEscape(id)
}

// ListFolders lists the children of parentID, or the root folders when nil.
func (c *Client) ListFolders(ctx context.Context, parentID *string) ([]docsystem.Folder, error) {
	path := "/api/folders"
	if parentID != nil {
		path += "?parent_id=" + url.QueryEscape(*parentID)
	}
	var folders []docsystem.Folder
	if err := c.do(ctx, http.MethodGet, path, nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// CreateFolder creates a folder under parentID (nil for root).
func (c *Client) CreateFolder(ctx context.Context, name string, parentID *string) (*docsystem.Folder, error) {
	var f docsystem.Folder
	if err := c.do(ctx, http.MethodPost, "/api/folders", createFolderBody{Name: name, ParentID: parentID}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(ctx context.Context, id, name string) (*docsystem.Folder, error) {
	var f docsystem.Folder
	if err := c.do(ctx, http.MethodPatch, folderPath(id), map[string]string{"name": name}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFolder deletes a folder with everything under it.
func (c *Client) DeleteFolder(ctx context.Context, id string) (*docsystem.FolderDeletion, error) {
	var del docsystem.FolderDeletion
	if err := c.do(ctx, http.MethodDelete, folderPath(id), nil, &del); err != nil {
		return nil, err
	}
	return &del, nil
}

// ListDocuments lists the documents of a folder without content.
func (c *Client) ListDocuments(ctx context.Context, folderID string) ([]docsystem.DocumentSummary, error) {
	var docs []docsystem.DocumentSummary
	if err := c.do(ctx, http.MethodGet, folderPath(folderID)+"/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
