package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the per-user row created the first time a user touches the API.
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email"` // From the JWT, not stored
	DisplayName *string   `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OptionalDisplayName tracks tri-state semantics for display_name updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"name": field has value
type OptionalDisplayName struct {
	Present bool
	Value   *string
}

// UpdateProfileRequest represents a partial profile update.
type UpdateProfileRequest struct {
	DisplayName OptionalDisplayName
}
