package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
)

// RankingsDependencies defines the interface for ranking list operations.
type RankingsDependencies interface {
	Rankings(ctx context.Context, limit int) (types.Rankings, error)
	MaxRankings() int
}

// RankingsHandler handles ranking list requests.
type RankingsHandler struct {
	deps   RankingsDependencies
	logger logger.Logger
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, log logger.Logger) *RankingsHandler {
	return &RankingsHandler{deps: deps, logger: log}
}

// HandleGetRankings handles GET /api/rankings[?limit=N] requests.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer, got %q", raw)))
			return
		}
		if maxLimit := h.deps.MaxRankings(); n > maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be <= %d", maxLimit)))
			return
		}
		limit = n
	}

	rankings, err := h.deps.Rankings(r.Context(), limit)
	if err != nil {
		status, code := sessionStatusCode(err)
		if status == http.StatusInternalServerError {
			writeInternal(r.Context(), w, h.logger, Wrap(op, err))
			return
		}
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}
