package sessionclient

import "errors"

var (
	// ErrNotSubmitted marks a session that was never sent because the run was cancelled.
	ErrNotSubmitted = errors.New("not submitted")
	// ErrNoSessions is returned when there is nothing to submit.
	ErrNoSessions = errors.New("no sessions to submit")
	// ErrUnhealthy is returned when the API health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
)
