package sessionclient

import (
	"context"
	"fmt"
	"io"
	"time"

	repository "github.com/okian/crosscount/internal/adapters/repository"
	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/view"
	"github.com/okian/crosscount/pkg/logger"
)

// Run checks the API, submits every session and, when cfg.Top > 0, prints the
// resulting leaderboard to out. Individual rejections do not fail the run.
func Run(ctx context.Context, cfg *Config, out io.Writer) (Stats, error) {
	log := logger.Named("submitter")
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting session submission",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("resultsFile", cfg.ResultsFile),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	// Step 1: Check service health
	client := view.NewClient(cfg.BaseURL, view.WithTimeout(cfg.Timeout))
	if err := checkServiceHealth(ctx, client, log); err != nil {
		return stats, err
	}

	// Step 2: Load sessions
	sessions, err := loadSessions(ctx, cfg, log)
	if err != nil {
		return stats, err
	}

	// Step 3: Submit concurrently
	results := NewSubmitter(cfg.BaseURL, cfg.Timeout, log).SubmitAll(ctx, sessions, cfg.Workers)
	summary := Summarize(results)
	summary.StartTime = stats.StartTime
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)

	log.Info(ctx, "submission completed",
		logger.Int("submitted", summary.Submitted),
		logger.Int("accepted", summary.Accepted),
		logger.Int("rejected", summary.Rejected),
		logger.Int("failed", summary.Failed),
		logger.Duration("duration", summary.Duration))

	// Step 4: Show the leaderboard
	if cfg.Top > 0 && out != nil {
		if err := printTop(ctx, client, cfg.Top, out); err != nil {
			log.Warn(ctx, "failed to fetch leaderboard", logger.Error(err))
		}
	}
	return summary, nil
}

// checkServiceHealth verifies the API is running.
func checkServiceHealth(ctx context.Context, client *view.Client, log logger.Logger) error {
	log.Info(ctx, "checking service health", logger.String("url", client.BaseURL()))
	h, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if h.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, h.Status)
	}
	log.Info(ctx, "service is healthy")
	return nil
}

func loadSessions(ctx context.Context, cfg *Config, log logger.Logger) ([]model.Session, error) {
	sessions := cfg.Sessions
	if cfg.ResultsFile != "" {
		loaded, skipped, err := repository.LoadResultsFile(cfg.ResultsFile)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			log.Warn(ctx, "skipped invalid sessions in results file",
				logger.String("path", cfg.ResultsFile),
				logger.Int("skipped", skipped))
		}
		sessions = loaded
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	return sessions, nil
}

// printTop renders the first top entries. The server default limit is its
// maximum, so the list is cut here rather than asking for more than it allows.
func printTop(ctx context.Context, client *view.Client, top int, out io.Writer) error {
	snap, err := client.FetchBoard(ctx)
	if err != nil {
		return err
	}
	if len(snap.Rankings.Rankings) > top {
		snap.Rankings.Rankings = snap.Rankings.Rankings[:top]
	}
	return view.Render(out, snap)
}
