// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/crosscount/internal/app"
	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
	"github.com/okian/crosscount/pkg/metrics"
)

const defaultMaxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingsDependencies
	UserDependencies
	StatsDependencies
	SubmitDependencies
	HealthDependencies
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the ranking API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	submitHandler   *SubmitHandler
	rankingsHandler *RankingsHandler
	userHandler     *UserHandler

	allowedOrigins []string
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger         logger.Logger
	allowedOrigins []string
	maxBodyBytes   int64
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAllowedOrigins sets the CORS allow-list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(o *serverOptions) {
		o.allowedOrigins = origins
	}
}

// WithMaxBodyBytes caps the size of submission bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{
		logger:         logger.Nop(),
		allowedOrigins: []string{"*"},
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:   NewHealthHandler(deps, o.logger),
		statsHandler:    NewStatsHandler(deps, o.logger),
		submitHandler:   NewSubmitHandler(deps, o.maxBodyBytes, o.logger),
		rankingsHandler: NewRankingsHandler(deps, o.logger),
		userHandler:     NewUserHandler(deps, o.logger),
		allowedOrigins:  o.allowedOrigins,
		logger:          o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, CORSMiddleware(MetricsMiddleware(h, endpoint), s.allowedOrigins))
	}

	route("/api/health", "health", s.healthHandler.HandleHealth)
	route("/api/stats", "stats", s.statsHandler.HandleStats)
	route("/api/submit", "submit", s.submitHandler.HandleSubmit)
	route("/api/rankings", "rankings", s.rankingsHandler.HandleGetRankings)
	route("/api/rankings/user/", "rankings_user", s.userHandler.HandleGetUser)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	s.logger.Debug(ctx, "api routes registered", logger.Int("origins", len(s.allowedOrigins)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeInternal logs err and answers 500 without leaking details.
func writeInternal(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	log.Error(ctx, "request failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// sessionStatusCode maps service errors to HTTP status codes.
func sessionStatusCode(err error) (int, string) {
	switch {
	case isKind(err, model.ErrInvalidSession, ErrBadRequest, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case isKind(err, service.ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case isKind(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case isKind(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
