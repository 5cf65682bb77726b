package auth

import "prompthub/internal/domain/models"

// JWTVerifier verifies Supabase access tokens. The HTTP middleware depends on
// this interface only, so tests can swap in a static key set.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
