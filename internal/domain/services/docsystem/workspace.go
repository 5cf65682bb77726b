package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// WorkspaceService serves the bulk reads a client needs to hydrate its caches
type WorkspaceService interface {
	// GetSnapshot returns every folder and document summary of the user
	GetSnapshot(ctx context.Context, userID string) (*docsystem.WorkspaceSnapshot, error)

	// GetDashboard returns counts and the most recently updated documents
	GetDashboard(ctx context.Context, userID string) (*docsystem.DashboardMetrics, error)
}
