package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	docsystem "prompthub/internal/domain/models/docsystem"
	docsysSvc "prompthub/internal/domain/services/docsystem"
	"prompthub/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// SaveVersionResponse is returned by an explicit save
type SaveVersionResponse struct {
	VersionID int64               `json:"version_id"`
	Document  *docsystem.Document `json:"document"`
}

type validateDocumentsRequest struct {
	IDs []string `json:"ids"`
}

type validateDocumentsResponse struct {
	ValidIDs []string `json:"valid_ids"`
}

// CreateDocument creates a new document
// POST /api/documents
// Returns 201 if created, 409 with existing document if duplicate
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req docsysSvc.CreateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.UserID = userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(existingID string) (*docsystem.Document, error) {
			return h.docService.GetDocument(r.Context(), userID, existingID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document with its content
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RenameDocument changes a document title
// PATCH /api/documents/{id}
func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docsysSvc.RenameDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}

	doc, err := h.docService.RenameDocument(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// AutoSave stores content without recording a version
// PUT /api/documents/{id}/content
func (h *DocumentHandler) AutoSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docsysSvc.AutoSaveRequest
	if !parseBody(w, r, &req) {
		return
	}

	doc, err := h.docService.AutoSave(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc.Summary())
}

// SaveVersion records an explicit save
// POST /api/documents/{id}/versions
func (h *DocumentHandler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docsysSvc.SaveVersionRequest
	if !parseBody(w, r, &req) {
		return
	}

	version, doc, err := h.docService.SaveVersion(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, SaveVersionResponse{
		VersionID: version.ID,
		Document:  doc,
	})
}

// ListVersions lists the explicit saves of a document
// GET /api/documents/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.docService.ListVersions(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetVersion returns the reconstructed content of one version
// GET /api/documents/{id}/versions/{versionId}
func (h *DocumentHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, err := strconv.ParseInt(r.PathValue("versionId"), 10, 64)
	if err != nil || versionID <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid version ID")
		return
	}

	version, err := h.docService.GetVersion(r.Context(), httputil.GetUserID(r), id, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// DeleteDocument deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ValidateDocuments filters a list of ids down to those that still exist
// POST /api/documents/validate
func (h *DocumentHandler) ValidateDocuments(w http.ResponseWriter, r *http.Request) {
	var req validateDocumentsRequest
	if !parseBody(w, r, &req) {
		return
	}

	ids, err := h.docService.ValidateDocuments(r.Context(), httputil.GetUserID(r), req.IDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, validateDocumentsResponse{ValidIDs: ids})
}
