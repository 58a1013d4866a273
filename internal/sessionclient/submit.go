package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/pkg/logger"
)

const maxResponseBody = 4 << 10

// Submitter posts sessions to the ranking API.
type Submitter struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewSubmitter returns a submitter for the API at baseURL.
func NewSubmitter(baseURL string, timeout time.Duration, log logger.Logger) *Submitter {
	if log == nil {
		log = logger.Nop()
	}
	return &Submitter{
		url:    strings.TrimRight(baseURL, "/") + "/api/submit",
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type submitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Submit posts one session and classifies the answer.
func (s *Submitter) Submit(ctx context.Context, sess model.Session) Result {
	res := Result{Session: sess, Outcome: Failed}
	sess.ID = ""

	body, err := json.Marshal(sess)
	if err != nil {
		res.Err = fmt.Errorf("failed to marshal session: %w", err)
		return res
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		res.Err = fmt.Errorf("failed to create request: %w", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = resp.Body.Close() }()
	res.Status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		res.Err = fmt.Errorf("failed to read response: %w", err)
		return res
	}

	switch {
	case resp.StatusCode == http.StatusCreated:
		var ok submitResponse
		_ = json.Unmarshal(raw, &ok)
		res.Outcome = Accepted
		res.ID = ok.ID
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var e errorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			msg = e.Message
		}
		res.Outcome = Rejected
		res.Err = fmt.Errorf("rejected with status %d: %s", resp.StatusCode, msg)
	default:
		res.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return res
}

// SubmitAll submits sessions through a pool of workers. Rejections and
// failures are logged and do not stop the run. Results keep input order;
// sessions not sent before ctx ended fail with ErrNotSubmitted.
func (s *Submitter) SubmitAll(ctx context.Context, sessions []model.Session, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(sessions))
	for i := range sessions {
		results[i] = Result{Session: sessions[i], Outcome: Failed, Err: ErrNotSubmitted}
	}
	jobs := make(chan int, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r := s.Submit(ctx, sessions[i])
				results[i] = r
				s.logResult(ctx, i, r)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range sessions {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return results
}

func (s *Submitter) logResult(ctx context.Context, idx int, r Result) {
	switch r.Outcome {
	case Accepted:
		s.log.Debug(ctx, "session accepted",
			logger.Int("index", idx),
			logger.String("username", r.Session.Username),
			logger.String("id", r.ID))
	case Rejected:
		s.log.Warn(ctx, "session rejected",
			logger.Int("index", idx),
			logger.String("username", r.Session.Username),
			logger.Int("status", r.Status),
			logger.Error(r.Err))
	default:
		s.log.Error(ctx, "session submission failed",
			logger.Int("index", idx),
			logger.String("username", r.Session.Username),
			logger.Error(r.Err))
	}
}

// Summarize counts the outcomes of results.
func Summarize(results []Result) Stats {
	st := Stats{Submitted: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case Accepted:
			st.Accepted++
		case Rejected:
			st.Rejected++
		default:
			st.Failed++
		}
	}
	return st
}
