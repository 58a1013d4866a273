package service

import "errors"

var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidLimit is returned for a non-positive rankings limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrLimitExceeded is returned when a rankings limit is above the configured maximum.
	ErrLimitExceeded = errors.New("limit exceeded")
)
