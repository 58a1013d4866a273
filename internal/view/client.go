// Package view fetches the leaderboard from the ranking API and renders it
// for a terminal.
package view

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/crosscount/internal/domain/types"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Snapshot is one consistent read of rankings and global stats.
type Snapshot struct {
	Rankings  types.Rankings
	Stats     types.GlobalStats
	FetchedAt time.Time
}

// Health mirrors the health endpoint body.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Client reads the ranking API.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchBoard requests rankings and stats concurrently and returns both. The
// first failure cancels the other request.
func (c *Client) FetchBoard(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := c.Rankings(gctx, 0)
		snap.Rankings = r
		return err
	})
	g.Go(func() error {
		s, err := c.Stats(gctx)
		snap.Stats = s
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = c.now()
	return snap, nil
}

// Rankings fetches the ranking list. A zero limit uses the server default.
func (c *Client) Rankings(ctx context.Context, limit int) (types.Rankings, error) {
	path := "/api/rankings"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var r types.Rankings
	err := c.getJSON(ctx, path, &r)
	return r, err
}

// Stats fetches the global statistics.
func (c *Client) Stats(ctx context.Context) (types.GlobalStats, error) {
	var s types.GlobalStats
	err := c.getJSON(ctx, "/api/stats", &s)
	return s, err
}

// User fetches one user's stats and sessions.
func (c *Client) User(ctx context.Context, username string) (types.UserStats, error) {
	var u types.UserStats
	err := c.getJSON(ctx, "/api/rankings/user/"+url.PathEscape(username), &u)
	return u, err
}

// Health checks the API liveness endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.getJSON(ctx, "/api/health", &h)
	return h, err
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

func statusError(path string, resp *http.Response) error {
	se := &StatusError{Path: path, Code: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		se.Message = e.Message
	}
	return se
}
