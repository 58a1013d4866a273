// Command leaderboard prints the crosscount leaderboard in a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/crosscount/internal/view"
	"github.com/okian/crosscount/pkg/logger"
)

const (
	defaultBaseURL = "http://localhost:5002"
	defaultTimeout = 10 * time.Second
	clearScreen    = "\033[H\033[2J"
)

func main() {
	var (
		baseURL = flag.String("url", envOr("NEXT_PUBLIC_API_URL", defaultBaseURL), "Base URL of the ranking API")
		watch   = flag.Duration("watch", 0, "Refresh interval; 0 renders once")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		level   = flag.String("log-level", "warn", "Log level")
	)
	flag.Parse()

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(*level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	board := view.NewBoard(view.NewClient(*baseURL, view.WithTimeout(*timeout)))
	err := run(ctx, board, *watch, os.Stdout)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run refreshes board once, or every interval until ctx ends, rendering each result.
func run(ctx context.Context, board *view.Board, interval time.Duration, out io.Writer) error {
	log := logger.Named("leaderboard")

	if interval <= 0 {
		if err := board.Refresh(ctx); err != nil {
			log.Error(ctx, "failed to load leaderboard", logger.Error(err))
			return err
		}
		snap, _ := board.Snapshot()
		return view.Render(out, snap)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := board.Refresh(ctx)
		if ctx.Err() != nil {
			return nil
		}
		_, _ = io.WriteString(out, clearScreen)
		if snap, ok := board.Snapshot(); ok {
			_ = view.Render(out, snap)
		}
		if err != nil && !errors.Is(err, view.ErrSuperseded) {
			log.Warn(ctx, "refresh failed", logger.Error(err))
			fmt.Fprintf(out, "Could not load the leaderboard: %v (retrying in %s)\n", err, interval)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
