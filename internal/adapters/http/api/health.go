package api

import (
	"context"
	"net/http"

	service "github.com/okian/crosscount/internal/app"
	"github.com/okian/crosscount/pkg/logger"
)

// HealthDependencies defines the interface for liveness checks.
type HealthDependencies interface {
	Health(ctx context.Context) (service.Health, error)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps   HealthDependencies
	logger logger.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies, log logger.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, logger: log}
}

// HandleHealth handles GET /api/health requests. An unreachable store is
// reported as 503 with the same body shape.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.health", http.MethodGet)
		return
	}
	status, err := h.deps.Health(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "health check failed", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
