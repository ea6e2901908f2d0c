package services

import (
	"errors"
	"fmt"
)

// Failure kinds. Gateway and service errors wrap exactly one of these, so
// callers classify with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("revision conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrTransient  = errors.New("temporarily unavailable")
	ErrValidation = errors.New("invalid input")

	// ErrNeedsConfirmation is returned by uploads that would replace an
	// existing file without the editor having confirmed it.
	ErrNeedsConfirmation = errors.New("confirmation required")
)

// GatewayError describes a failed backing-store operation.
type GatewayError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, err error) error {
	return &GatewayError{Op: op, Path: path, Kind: kind, Err: err}
}

// Kind returns the failure kind err wraps, or nil if it wraps none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNeedsConfirmation, ErrNotFound, ErrConflict, ErrAuth, ErrTransient} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
