package docsystem

import (
	"context"

	"prompthub/internal/domain/models/docsystem"
)

// TreeService defines operations for building folder trees
type TreeService interface {
	// GetTree builds and returns the nested folder/document tree of a user
	GetTree(ctx context.Context, userID string) (*docsystem.TreeNode, error)
}
