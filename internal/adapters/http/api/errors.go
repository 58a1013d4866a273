package api

import (
	"errors"
	"strings"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrTooLarge         = errors.New("request body too large")
)

// opError tags an error with the handler operation and an optional kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	return e.op + ": " + e.message()
}

// message is the client-facing text: the error chain without the op prefix.
func (e *opError) message() string {
	switch {
	case e.kind != nil && e.err != nil:
		return e.kind.Error() + ": " + e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	case e.err != nil:
		return e.err.Error()
	default:
		return "unknown error"
	}
}

func (e *opError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind annotates err with op and a sentinel kind, so errors.Is matches both.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of kind for op with no further cause.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// publicMessage strips the operation prefix before an error reaches a client.
func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		return oe.message()
	}
	return strings.TrimSpace(err.Error())
}

func isKind(err error, kinds ...error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
