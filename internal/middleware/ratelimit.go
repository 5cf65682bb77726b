package middleware

import (
	"log/slog"
	"net/http"

	"prompthub/internal/httputil"
	"prompthub/internal/ratelimit"
)

// RateLimit limits requests per authenticated user, falling back to the
// remote address for anonymous requests. Rejections get a 429.
func RateLimit(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := httputil.GetUserID(r)
			if key == "" {
				key = r.RemoteAddr
			}

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "1")
				httputil.RespondError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
