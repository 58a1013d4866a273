package sessionclient

import (
	"time"

	"github.com/okian/crosscount/internal/domain/model"
)

// Config holds configuration for a submission run.
type Config struct {
	BaseURL     string          // Base URL of the ranking API
	ResultsFile string          // JSON results file to submit; empty means Sessions
	Sessions    []model.Session // Sessions to submit when ResultsFile is empty
	Workers     int             // Number of concurrent workers
	Timeout     time.Duration   // HTTP request timeout
	Top         int             // Rankings to print after submitting; 0 skips
}

// Outcome classifies a single submission.
type Outcome int

// Submission outcomes.
const (
	Accepted Outcome = iota // 201
	Rejected                // 4xx, the payload was refused
	Failed                  // transport error or 5xx
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Result is the outcome of one submission.
type Result struct {
	Session model.Session
	Outcome Outcome
	ID      string // assigned by the API when accepted
	Status  int    // HTTP status, 0 on transport error
	Err     error
}

// Stats summarizes a run.
type Stats struct {
	Submitted int
	Accepted  int
	Rejected  int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
