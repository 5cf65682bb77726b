package api

import (
	"context"
	"net/http"

	"prompthub/internal/domain/models"
	"prompthub/internal/domain/models/docsystem"
)

// Snapshot fetches every folder and document summary in one call.
func (c *Client) Snapshot(ctx context.Context) (*docsystem.WorkspaceSnapshot, error) {
	var snap docsystem.WorkspaceSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/workspace/snapshot", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Tree fetches the nested folder tree.
func (c *Client) Tree(ctx context.Context) (*docsystem.TreeNode, error) {
	var tree docsystem.TreeNode
	if err := c.do(ctx, http.MethodGet, "/api/workspace/tree", nil, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Dashboard fetches workspace totals and recent activity.
func (c *Client) Dashboard(ctx context.Context) (*docsystem.DashboardMetrics, error) {
	var m docsystem.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateDisplayName sets the display name; nil clears it.
func (c *Client) UpdateDisplayName(ctx context.Context, name *string) (*models.Profile, error) {
	var p models.Profile
	body := map[string]*string{"display_name": name}
	if err := c.do(ctx, http.MethodPatch, "/api/profile", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
