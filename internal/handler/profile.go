package handler

import (
	"log/slog"
	"net/http"

	"prompthub/internal/domain/models"
	"prompthub/internal/domain/services"
	"prompthub/internal/httputil"
)

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	service services.ProfileService
	logger  *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

type updateProfileRequest struct {
	DisplayName httputil.OptionalString `json:"display_name"`
}

// GetProfile retrieves the caller's profile
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uuid, err := parseUUID(httputil.GetUserID(r))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), uuid, httputil.GetEmail(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UpdateProfile updates the caller's profile
// PATCH /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uuid, err := parseUUID(httputil.GetUserID(r))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var body updateProfileRequest
	if !parseBody(w, r, &body) {
		return
	}
	req := models.UpdateProfileRequest{
		DisplayName: models.OptionalDisplayName{
			Present: body.DisplayName.Present,
			Value:   body.DisplayName.Value,
		},
	}

	profile, err := h.service.UpdateProfile(r.Context(), uuid, httputil.GetEmail(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}
