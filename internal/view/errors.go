package view

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by a refresh that a newer refresh replaced.
	ErrSuperseded = errors.New("refresh superseded")
	// ErrDecode marks a response body that is not the expected JSON.
	ErrDecode = errors.New("decode response")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GET %s: status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.Path, e.Code, e.Message)
}
