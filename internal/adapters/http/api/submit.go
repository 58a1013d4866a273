package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/pkg/logger"
	"github.com/okian/crosscount/pkg/metrics"
)

// SubmitDependencies defines the interface for session submission.
type SubmitDependencies interface {
	Submit(ctx context.Context, s model.Session) (model.Session, error)
}

// SubmitHandler handles session submissions.
type SubmitHandler struct {
	deps         SubmitDependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies, maxBodyBytes int64, log logger.Logger) *SubmitHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &SubmitHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: log}
}

// submitRequest mirrors the OpenAPI schema for POST /api/submit. Pointers
// tell a missing field apart from a zero value.
type submitRequest struct {
	Username        *string          `json:"username"`
	Timestamp       *model.Timestamp `json:"timestamp"`
	TotalCrossings  *int             `json:"total_crossings"`
	RatePerMinute   *float64         `json:"counts_per_minute"`
	DurationSeconds *float64         `json:"session_duration_seconds"`
}

func (req submitRequest) session() (model.Session, error) {
	switch {
	case req.Username == nil:
		return model.Session{}, missingField("username")
	case req.TotalCrossings == nil:
		return model.Session{}, missingField("total_crossings")
	case req.RatePerMinute == nil:
		return model.Session{}, missingField("counts_per_minute")
	case req.DurationSeconds == nil:
		return model.Session{}, missingField("session_duration_seconds")
	}
	s := model.Session{
		Username:        *req.Username,
		TotalCrossings:  *req.TotalCrossings,
		RatePerMinute:   *req.RatePerMinute,
		DurationSeconds: *req.DurationSeconds,
	}
	if req.Timestamp != nil {
		s.Timestamp = *req.Timestamp
	}
	return s, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field: %s", name)
}

type submitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleSubmit handles POST /api/submit requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.RecordSessionRejected("too_large")
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", NewKind(op, ErrTooLarge))
			return
		}
		metrics.RecordSessionRejected("malformed")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sess, err := req.session()
	if err != nil {
		metrics.RecordSessionRejected("missing_field")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	stored, err := h.deps.Submit(r.Context(), sess)
	if err != nil {
		status, code := sessionStatusCode(err)
		if status == http.StatusInternalServerError {
			writeInternal(r.Context(), w, h.logger, Wrap(op, err))
			return
		}
		h.logger.Debug(r.Context(), "session rejected", logger.Error(err))
		writeError(w, status, code, Wrap(op, err))
		return
	}

	h.logger.Info(r.Context(), "session submitted",
		logger.String("id", stored.ID),
		logger.String("username", stored.Username),
		logger.Float64("rate", stored.RatePerMinute),
	)
	writeJSON(w, http.StatusCreated, submitResponse{Message: "Session submitted successfully", ID: stored.ID})
}
