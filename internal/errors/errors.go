// Package errors provides domain-specific error types and sentinel errors
// for the answer fetch pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrQuestionNotFound indicates the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrAnswerNotFound indicates no answer has been stored for a question.
	ErrAnswerNotFound = errors.New("answer not found")

	// ErrEmptyResponse indicates the remote model returned a success status
	// but no usable message content.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// TransportError represents a network or I/O failure reaching the remote
// chat-completion endpoint. The underlying cause is preserved for errors.Is/As.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (endpoint=%s): %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error.
func NewTransportError(endpoint string, err error) *TransportError {
	return &TransportError{Endpoint: endpoint, Err: err}
}

// RemoteError represents a completed remote call that did not yield a usable
// success body: non-2xx status, or a success status with a missing body.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote error (status=%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error: %s", e.Message)
}

// NewRemoteError creates a new remote error.
func NewRemoteError(statusCode int, message string) *RemoteError {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// PersistenceError wraps an opaque failure from the local store. The fetch
// pipeline treats it as non-recoverable for the current attempt.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (operation=%s): %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new persistence error.
func NewPersistenceError(operation string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Err: err}
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
