package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface lets the handler layer translate domain
// failures without enumerating every error type.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("another generation is in flight")
	ErrGeneration = errors.New("generation failed")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// BusyError indicates a draft or merge call is already in flight
	// for the session. The busy flag makes these mutually exclusive.
	BusyError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *BusyError) Error() string       { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *BusyError) StatusCode() int       { return http.StatusConflict }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *BusyError) Is(target error) bool       { return target == ErrBusy }

// GenerationError indicates a draft generation or suggestion-merge call
// failed or returned unusable output. It is surfaced to the user; the
// session state it was invoked against stays untouched.
type GenerationError struct {
	Op      string // "draft", "suggestions" or "merge"
	Message string
	Err     error // underlying cause, may be nil
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) StatusCode() int { return http.StatusBadGateway }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// NoCurrentRevisionError indicates an operation requiring a current
// revision was invoked before any draft exists. Callers are expected to
// guard against this; reaching it is a contract violation.
type NoCurrentRevisionError struct {
	Op string
}

func (e *NoCurrentRevisionError) Error() string {
	return fmt.Sprintf("%s: no current revision", e.Op)
}

func (e *NoCurrentRevisionError) StatusCode() int { return http.StatusConflict }
