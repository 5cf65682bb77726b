package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder or document is missing or not owned by the caller
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (empty or placeholder title, bad id)
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets the typed errors match their sentinels with errors.Is().
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a duplicate title/name inside the same parent.
// Comparison is case-insensitive, so "Foo" collides with an existing "foo".
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // "document" or "folder"
	ResourceID   string // ID of the existing resource, when known
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewDuplicateTitleError builds the conflict returned when a document title is already
// used in the target folder.
func NewDuplicateTitleError(title, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a document titled '%s' already exists in this folder", title),
		ResourceType: "document",
		ResourceID:   existingID,
	}
}

// NewDuplicateFolderError builds the conflict returned when a folder name is already
// used under the same parent.
func NewDuplicateFolderError(name, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a folder named '%s' already exists here", name),
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}
