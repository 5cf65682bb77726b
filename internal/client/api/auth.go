package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prompthub/internal/domain"
)

// User is the signed-in Supabase user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a Supabase Auth session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past (or within skew of) its expiry.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	return !s.ExpiresAt.IsZero() && now.Add(skew).After(s.ExpiresAt)
}

// AuthClient signs users in and out against Supabase Auth (GoTrue).
type AuthClient struct {
	supabaseURL string
	anonKey     string
	httpClient  *http.Client
	now         func() time.Time
}

// NewAuthClient creates an auth client with the project's anon key.
func NewAuthClient(supabaseURL, anonKey string) *AuthClient {
	return &AuthClient{
		supabaseURL: strings.TrimRight(supabaseURL, "/"),
		anonKey:     anonKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
	}
}

// SignIn exchanges email and password for a session.
func (c *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.token(ctx, "password", body)
}

// Refresh exchanges a refresh token for a new session.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.token(ctx, "refresh_token", body)
}

// GetUser returns the user that owns accessToken.
func (c *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, authError("get user", resp)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// SignOut revokes the session behind accessToken.
func (c *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return authError("sign out", resp)
	}
	return nil
}

func (c *AuthClient) token(ctx context.Context, grant string, body any) (*Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grant, "", payload)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, authError("sign in", resp)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.AccessToken == "" || s.User.ID == "" {
		return nil, &domain.UnauthorizedError{Message: "auth server returned an incomplete session"}
	}
	if s.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return &s, nil
}

func (c *AuthClient) do(ctx context.Context, method, path, accessToken string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// authError turns a GoTrue error body into an UnauthorizedError for 4xx and a
// StatusError otherwise.
func authError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	detail := firstNonEmpty(body.ErrorDescription, body.Msg, body.Message, body.Error, strings.TrimSpace(string(raw)))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return &domain.UnauthorizedError{Message: fmt.Sprintf("%s: %s", op, detail)}
	}
	return &StatusError{Code: resp.StatusCode, Detail: detail}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
