package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zfogg/pageshare/pkg/kv"
	"github.com/zfogg/pageshare/pkg/lists"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeCapacity   ErrorType = "capacity"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeSession    ErrorType = "session"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check that api.base_url points at a running server and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// HTTPError wraps a non-success API response
func HTTPError(statusCode int, status string) *CLIError {
	err := NewCLIError(ErrorTypeHTTP, fmt.Sprintf("API request failed: %s", status), nil)
	err.StatusCode = statusCode
	if statusCode >= 500 {
		err.Type = ErrorTypeServer
		err.Suggestion = "The server encountered an error. Try again in a few moments."
	}
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", resourceType, identifier), nil)
}

// StorageError wraps a backend failure
func StorageError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeStorage, message, cause)
	err.Suggestion = "Check store.backend and its connection settings with 'pageshare cache stats'."
	return err
}

// CapacityError reports a backend that is out of room
func CapacityError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeCapacity, "Local store is full", cause)
	err.Suggestion = "Run 'pageshare cache clear' or raise store.quota_bytes."
	return err
}

// SessionError reports a missing acting handle
func SessionError() *CLIError {
	err := NewCLIError(ErrorTypeSession, "No acting handle", nil)
	err.Suggestion = "Pass --as <handle> or run 'pageshare session set <handle>'."
	return err
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var typeErr *lists.InvalidTypeError
	switch {
	case kv.IsCapacityExceeded(err), errors.Is(err, lists.ErrNotStored):
		return CapacityError(err)
	case kv.IsNotFound(err):
		return NewCLIError(ErrorTypeNotFound, err.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError(err)
	case errors.Is(err, lists.ErrSelf), errors.Is(err, lists.ErrEmpty), errors.As(err, &typeErr):
		return NewCLIError(ErrorTypeValidation, err.Error(), err)
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.", err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
