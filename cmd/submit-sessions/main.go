// Command submit-sessions replays tracking results into the ranking API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/sessionclient"
	"github.com/okian/crosscount/pkg/logger"
)

// Default configuration constants.
const (
	defaultBaseURL  = "http://localhost:5002"
	defaultWorkers  = 4
	defaultTimeout  = 10 * time.Second
	defaultTop      = 10
	defaultDuration = 60.0
	runTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", envOr("NEXT_PUBLIC_API_URL", defaultBaseURL), "Base URL of the ranking API")
		file      = flag.String("file", "", "Results file to submit")
		username  = flag.String("username", "", "Submit a single session for this user")
		crossings = flag.Int("crossings", 0, "Total crossings of the single session")
		rate      = flag.Float64("rate", 0, "Crossings per minute of the single session")
		duration  = flag.Float64("duration", defaultDuration, "Session duration in seconds of the single session")
		workers   = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		top       = flag.Int("top", defaultTop, "Rankings to print after submitting, 0 to skip; capped by the server's max_rankings")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sessionclient.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	cfg := &sessionclient.Config{
		BaseURL:     *baseURL,
		ResultsFile: *file,
		Workers:     *workers,
		Timeout:     *timeout,
		Top:         *top,
	}
	if *file == "" && *username != "" {
		cfg.Sessions = []model.Session{{
			Username:        *username,
			Timestamp:       model.NewTimestamp(time.Now()),
			TotalCrossings:  *crossings,
			RatePerMinute:   *rate,
			DurationSeconds: *duration,
		}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	stats, err := sessionclient.Run(ctx, cfg, os.Stdout)
	cancel()
	stop()
	if err != nil {
		os.Stderr.WriteString("submission failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("Submitted %d sessions: %d accepted, %d rejected, %d failed (%s)\n",
		stats.Submitted, stats.Accepted, stats.Rejected, stats.Failed, stats.Duration.Round(time.Millisecond))
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
