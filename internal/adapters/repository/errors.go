package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed         = errors.New("store closed")
	ErrResultsFile    = errors.New("results file unreadable")
	ErrUnknownBackend = errors.New("unknown store backend")
)
