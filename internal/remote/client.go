// Package remote implements types.Store against a remote entity store that
// answers with a {"success": bool, "data": ...} envelope. The orchard serve
// command exposes such a store under /api/items.
package remote

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
	"time"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Client)(nil)

const defaultTimeout = 10 * time.Second

// envelope is the response body of every entity store route.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is an HTTP entity store adapter.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for the store rooted at baseURL, for example
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, types.ErrRemoteURLEmpty
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// List fetches GET /api/items.
func (c *Client) List(ctx context.Context) ([]types.Item, error) {
	var items []types.Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []types.Item{}
	}
	return items, nil
}

// Create posts fields to POST /api/items.
func (c *Client) Create(ctx context.Context, fields types.Fields) (types.Item, error) {
	if err := fields.Validate(); err != nil {
		return types.Item{}, err
	}
	var item types.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", fields, &item); err != nil {
		return types.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// Update sends the full record to PUT /api/items/:id.
func (c *Client) Update(ctx context.Context, id string, item types.Item) (types.Item, error) {
	if id == "" {
		return types.Item{}, types.ErrInvalidID
	}
	var out types.Item
	if err := c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), item, &out); err != nil {
		return types.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	return out, nil
}

// do performs one request and decodes the envelope's data into out. A 404
// maps to ErrNotFound; any other success:false maps to ErrUnsuccessful.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// A 404 body may be a plain-text route miss rather than an envelope.
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("remote store call", "method", method, "path", path, "status", resp.StatusCode)
		return types.ErrNotFound
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	c.logger.Debug("remote store call", "method", method, "path", path, "status", resp.StatusCode, "success", env.Success)
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		if env.Error != "" {
			return fmt.Errorf("%w: %s", types.ErrUnsuccessful, env.Error)
		}
		return fmt.Errorf("%w (status %d)", types.ErrUnsuccessful, resp.StatusCode)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
