package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompthub/internal/domain"
)

func newAuthServer(t *testing.T) *AuthClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":             "invalid_grant",
					"error_description": "Invalid login credentials",
				})
				return
			}
		case "refresh_token":
			if body["refresh_token"] != "r1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "a1",
			"refresh_token": "r2",
			"expires_in":    3600,
			"user":          map[string]string{"id": "u1", "email": "dev@example.com"},
		})
	})
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
			return
		}
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Email: "dev@example.com"})
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewAuthClient(srv.URL, "anon")
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	return c
}

func TestAuthClient_SignIn(t *testing.T) {
	c := newAuthServer(t)

	s, err := c.SignIn(context.Background(), "dev@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a1", s.AccessToken)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), s.ExpiresAt)
	assert.False(t, s.Expired(time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC), time.Minute))
	assert.True(t, s.Expired(time.Date(2025, 1, 1, 0, 59, 30, 0, time.UTC), time.Minute))
}

func TestAuthClient_BadCredentials(t *testing.T) {
	c := newAuthServer(t)

	_, err := c.SignIn(context.Background(), "dev@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestAuthClient_Refresh(t *testing.T) {
	c := newAuthServer(t)

	s, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r2", s.RefreshToken)

	_, err = c.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthClient_GetUserAndSignOut(t *testing.T) {
	c := newAuthServer(t)
	ctx := context.Background()

	u, err := c.GetUser(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", u.Email)

	_, err = c.GetUser(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid JWT")

	assert.NoError(t, c.SignOut(ctx, "a1"))
}
