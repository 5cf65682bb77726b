package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "prompthub/internal/domain/services/docsystem"
	"prompthub/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService docsysSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService docsysSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/document tree of the caller
// GET /api/workspace/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	// Get userID from context (set by auth middleware)
	userID := httputil.GetUserID(r)

	tree, err := h.treeService.GetTree(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
