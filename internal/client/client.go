// Package client talks to a running memoria server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lazypower/memoria/internal/config"
	"github.com/lazypower/memoria/internal/journal"
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() string
}

// StatusError is returned for responses with status >= 400.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, strings.TrimSpace(e.Body))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to the memoria server.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

// New creates a client for baseURL. tokens may be nil for unauthenticated
// calls such as Health.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

// FromConfig creates a client from the client section of the config.
func FromConfig(cfg config.ClientConfig, tokens TokenSource) *Client {
	return New(cfg.URL, tokens, cfg.Timeout)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// Health returns the server's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.Health(ctx)
	return err == nil
}

func (c *Client) Me(ctx context.Context) (*journal.Profile, error) {
	var p journal.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileByUsername returns nil, nil when no such user exists.
func (c *Client) ProfileByUsername(ctx context.Context, username string) (*journal.Profile, error) {
	var p journal.Profile
	err := c.do(ctx, http.MethodGet, "/api/profiles/by-username/"+url.PathEscape(username), nil, &p)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// VisibleMemories returns ownerID's memories that the viewer may read,
// newest first. from and to are optional YYYY-MM-DD bounds.
func (c *Client) VisibleMemories(ctx context.Context, ownerID, from, to string) ([]journal.MemoryWithAuthor, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := "/api/profiles/" + url.PathEscape(ownerID) + "/memories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []journal.MemoryWithAuthor
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
