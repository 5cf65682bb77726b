// Package api is the workspace's HTTP client for the PromptHub server and
// for Supabase Auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"prompthub/internal/domain"
)

// StatusError is a non-2xx response that has no domain meaning, such as 429 or 5xx.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Detail)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to the PromptHub API with the current user's access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token sent with every request. "" signs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends a request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		c.logger.Debug("api error", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// problem is the union of the server's RFC 7807 body and the plain resource
// returned with a 409 on create.
type problem struct {
	Status       int    `json:"status"`
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	ID           string `json:"id"`
}

// decodeError maps an error response onto the domain error taxonomy.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var p problem
	if err := json.Unmarshal(raw, &p); err != nil {
		p.Detail = strings.TrimSpace(string(raw))
	}
	msg := p.Detail
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &domain.NotFoundError{Message: msg}
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return &domain.ValidationError{Message: msg}
	case http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: msg}
	case http.StatusForbidden:
		return &domain.ForbiddenError{Message: msg}
	case http.StatusConflict:
		conflict := &domain.ConflictError{
			Message:      msg,
			ResourceType: p.ResourceType,
			ResourceID:   p.ResourceID,
		}
		if conflict.ResourceID == "" {
			// Create conflicts carry the existing resource instead of a problem.
			conflict.ResourceID = p.ID
			if p.Detail == "" {
				conflict.Message = "an item with this name already exists here"
			}
		}
		return conflict
	default:
		return &StatusError{Code: resp.StatusCode, Detail: p.Detail}
	}
}

// IsTemporary reports whether err is a transport failure or a retryable status.
func IsTemporary(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var he domain.HTTPError
	return err != nil && !errors.As(err, &he) && !errors.Is(err, context.Canceled)
}
