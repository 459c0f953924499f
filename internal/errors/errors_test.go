package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewTransportError("api.deepseek.com", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatal("errors.As failed")
	}
	if terr.Endpoint != "api.deepseek.com" {
		t.Errorf("Endpoint = %q", terr.Endpoint)
	}
	if !strings.Contains(err.Error(), "api.deepseek.com") {
		t.Errorf("Error() = %q, endpoint missing", err.Error())
	}
}

func TestTransportErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := NewTransportError("host", errors.New("timeout"))
	outer := fmt.Errorf("fetch cycle: %w", inner)

	var terr *TransportError
	if !errors.As(outer, &terr) {
		t.Error("TransportError not found through fmt wrapping")
	}
}

func TestRemoteError(t *testing.T) {
	t.Parallel()

	err := NewRemoteError(429, "rate limited")
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Error() = %q", err.Error())
	}

	// Status zero drops the status segment.
	err = NewRemoteError(0, "no content")
	if strings.Contains(err.Error(), "status=") {
		t.Errorf("Error() = %q, unexpected status segment", err.Error())
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("database locked")
	err := NewPersistenceError("insert answer", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "insert answer") {
		t.Errorf("Error() = %q, operation missing", err.Error())
	}
}

func TestValidationErrorIsInvalidInput(t *testing.T) {
	t.Parallel()

	err := NewValidationError("content", "too long")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
	if !strings.Contains(err.Error(), "content") {
		t.Errorf("Error() = %q, field missing", err.Error())
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	if Wrap("answer", "fetch", nil, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	cause := ErrEmptyResponse
	err := Wrap("answer", "fetch", cause, "暂时无法获取答案")

	if !errors.Is(err, ErrEmptyResponse) {
		t.Error("cause not reachable through Unwrap")
	}
	if got := GetUserMessage(err); got != "暂时无法获取答案" {
		t.Errorf("GetUserMessage = %q", got)
	}
}

func TestGetUserMessageFallback(t *testing.T) {
	t.Parallel()

	if got := GetUserMessage(nil); got != "" {
		t.Errorf("GetUserMessage(nil) = %q", got)
	}

	plain := errors.New("plain failure")
	if got := GetUserMessage(plain); got != "plain failure" {
		t.Errorf("GetUserMessage = %q", got)
	}
}
