package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/crosscount/internal/domain/ranking"
	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
)

const userPathPrefix = "/api/rankings/user/"

// UserDependencies defines the interface for per-user lookups.
type UserDependencies interface {
	UserStats(ctx context.Context, username string) (types.UserStats, error)
}

// UserHandler handles per-user stats requests.
type UserHandler struct {
	deps   UserDependencies
	logger logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies, log logger.Logger) *UserHandler {
	return &UserHandler{deps: deps, logger: log}
}

// HandleGetUser handles GET /api/rankings/user/{username} requests.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}

	// Use the escaped path so usernames containing an encoded '/' stay whole.
	raw := strings.TrimPrefix(r.URL.EscapedPath(), userPathPrefix)
	username, err := url.PathUnescape(raw)
	if err != nil || raw == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	stats, err := h.deps.UserStats(r.Context(), username)
	if err != nil {
		if errors.Is(err, ranking.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		status, code := sessionStatusCode(err)
		if status == http.StatusInternalServerError {
			writeInternal(r.Context(), w, h.logger, Wrap(op, err))
			return
		}
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
