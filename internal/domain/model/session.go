// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidSession marks a session that violates the record invariants.
var ErrInvalidSession = errors.New("invalid session")

// Session is one completed tracking attempt. Sessions are immutable once
// stored. JSON names match the results file written by the tracking client.
type Session struct {
	ID              string    `json:"id,omitempty"`
	Username        string    `json:"username"`
	Timestamp       Timestamp `json:"timestamp"`
	TotalCrossings  int       `json:"total_crossings"`
	RatePerMinute   float64   `json:"counts_per_minute"`
	DurationSeconds float64   `json:"session_duration_seconds"`
}

// Validate checks the session invariants: a non-blank username, crossings
// and rate >= 0, duration > 0, all finite.
func (s Session) Validate() error {
	switch {
	case strings.TrimSpace(s.Username) == "":
		return fmt.Errorf("%w: missing username", ErrInvalidSession)
	case s.TotalCrossings < 0:
		return fmt.Errorf("%w: total_crossings must be >= 0", ErrInvalidSession)
	case math.IsNaN(s.RatePerMinute) || math.IsInf(s.RatePerMinute, 0) || s.RatePerMinute < 0:
		return fmt.Errorf("%w: counts_per_minute must be a finite number >= 0", ErrInvalidSession)
	case math.IsNaN(s.DurationSeconds) || math.IsInf(s.DurationSeconds, 0) || s.DurationSeconds <= 0:
		return fmt.Errorf("%w: session_duration_seconds must be a finite number > 0", ErrInvalidSession)
	case s.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidSession)
	}
	return nil
}

// TimestampLayout is the layout used by the tracking client and the API.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time encoded as TimestampLayout. RFC3339 is accepted on input.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds, the resolution of the layout.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// ParseTimestamp parses TimestampLayout (local time) or RFC3339.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return Timestamp{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q; want %q or RFC3339", s, TimestampLayout)
	}
	return Timestamp{Time: t.Local()}, nil
}

// String implements fmt.Stringer.
func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler. The zero time encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", s)
	}
	parsed, err := ParseTimestamp(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
