package sessionclient

import (
	"io"
)

// ShowHelp prints usage information for the submit-sessions tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Crosscount Session Submitter
============================

Submits completed tracking sessions to the ranking API.

Usage:
  go run ./cmd/submit-sessions [options]

Options:
  -url string
        Base URL of the ranking API (default $NEXT_PUBLIC_API_URL or "http://localhost:5002")
  -file string
        Results file to submit (JSON array, crossing_results.json shape)
  -username string
        Submit a single session for this user instead of a file
  -crossings int
        Total crossings of the single session
  -rate float
        Crossings per minute of the single session
  -duration float
        Session duration in seconds of the single session (default 60)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -top int
        Rankings to print after submitting, 0 to skip; capped by the
        server's max_rankings (default 10)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Replay a results file
  go run ./cmd/submit-sessions -file crossing_results.json

  # Submit one session
  go run ./cmd/submit-sessions -username alice -crossings 42 -rate 42 -duration 60
`)
}
