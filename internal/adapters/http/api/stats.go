package api

import (
	"context"
	"net/http"

	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
)

// StatsDependencies defines the interface for global statistics.
type StatsDependencies interface {
	GlobalStats(ctx context.Context) (types.GlobalStats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps   StatsDependencies
	logger logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies, log logger.Logger) *StatsHandler {
	return &StatsHandler{deps: deps, logger: log}
}

// HandleStats handles GET /api/stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	stats, err := h.deps.GlobalStats(r.Context())
	if err != nil {
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
