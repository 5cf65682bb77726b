package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"prompthub/internal/domain"
	"prompthub/internal/httputil"
)

// ProfileEnsurer creates the caller's profile row when missing.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) error
}

// EnsureProfile makes sure the authenticated user has a profile row before
// the request reaches a handler that writes rows referencing it.
func EnsureProfile(ensurer ProfileEnsurer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := httputil.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if err := ensurer.EnsureProfile(r.Context(), userID); err != nil {
				if errors.Is(err, domain.ErrValidation) {
					httputil.RespondError(w, http.StatusUnauthorized, "token subject is not a valid user ID")
					return
				}
				logger.Error("ensure profile failed", "user_id", userID, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
