// Package api is a thin client for the users REST resource. It maps each
// operation to one HTTP call and reports every failure as *Error. There is
// no retry, caching or client-side timeout; ctx is the only way to cancel.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/smileynet/pdm/internal/record"
)

// Client calls the users API rooted at a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (http.DefaultClient by default).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger for request and failure records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for baseURL, e.g. "http://localhost:3001".
// An empty baseURL is accepted; every call then fails with ErrNoBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every user. GET /users
func (c *Client) List(ctx context.Context) ([]record.UserRecord, error) {
	var users []record.UserRecord
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches one user. GET /users/{id}
func (c *Client) Get(ctx context.Context, id string) (record.UserRecord, error) {
	var u record.UserRecord
	if err := c.do(ctx, "get user", http.MethodGet, userPath(id), nil, &u); err != nil {
		return record.UserRecord{}, err
	}
	return u, nil
}

// Create creates a user. POST /users
func (c *Client) Create(ctx context.Context, in record.Input) (record.UserRecord, error) {
	var u record.UserRecord
	if err := c.do(ctx, "create user", http.MethodPost, "/users", in, &u); err != nil {
		return record.UserRecord{}, err
	}
	return u, nil
}

// Update applies a partial update. PATCH /users/{id}
func (c *Client) Update(ctx context.Context, id string, in record.UpdateInput) (record.UserRecord, error) {
	var u record.UserRecord
	if err := c.do(ctx, "update user", http.MethodPatch, userPath(id), in, &u); err != nil {
		return record.UserRecord{}, err
	}
	return u, nil
}

// Delete depersonalizes a user. DELETE /users/{id}
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}

// do performs one request. A nil out or a 204 response skips body decoding.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.baseURL == "" {
		c.logger.Error("api base URL not configured", "op", op)
		return &Error{Op: op, Err: ErrNoBaseURL}
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "op", op, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "op", op, "error", err)
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		text := strings.TrimSpace(string(data))
		c.logger.Error("api error response", "op", op, "status", resp.StatusCode, "body", text)
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       text,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("api decode failed", "op", op, "error", err)
		return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
