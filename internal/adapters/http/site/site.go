// Package site serves the embedded leaderboard page.
package site

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

type options struct {
	apiURL string
}

// Option configures Register.
type Option func(*options)

// WithAPIURL points the page at an API on another origin. Empty means same origin.
func WithAPIURL(url string) Option {
	return func(o *options) {
		o.apiURL = url
	}
}

// Register attaches the leaderboard page at / and its runtime config at /config.js.
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mux.HandleFunc("/config.js", configHandler(o.apiURL))
	mux.Handle("/", http.FileServer(FS()))
}

// configHandler exposes the API base URL to the page as window.API_URL.
func configHandler(apiURL string) http.HandlerFunc {
	body := fmt.Sprintf("window.API_URL = %s;\n", strconv.Quote(apiURL))
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(body))
	}
}
