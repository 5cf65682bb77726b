package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "prompthub/internal/domain/services/docsystem"
	"prompthub/internal/httputil"
)

// WorkspaceHandler serves the bulk reads clients hydrate from
type WorkspaceHandler struct {
	workspaceService docsysSvc.WorkspaceService
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService docsysSvc.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// GetSnapshot returns every folder and document summary of the caller
// GET /api/workspace/snapshot
func (h *WorkspaceHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.workspaceService.GetSnapshot(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snapshot)
}

// GetDashboard returns workspace counts and recent documents
// GET /api/dashboard
func (h *WorkspaceHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.workspaceService.GetDashboard(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, metrics)
}
