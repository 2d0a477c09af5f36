package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph store reachability errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypePool represents session pool errors
	ErrorTypePool ErrorType = "pool"
	// ErrorTypeQuery represents malformed query/parameter errors
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeNotFound represents unknown entity name errors
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeRewrite represents rewrite collaborator errors
	ErrorTypeRewrite ErrorType = "rewrite"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error's type. Promoted to every error struct
// that embeds BaseError, so IsErrorType works on wrappers too.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the graph store is unreachable
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to reach graph store: %s", uri), err),
		URI:       uri,
	}
}

// ErrQueryFailed is returned when a query is malformed or its parameters
// do not match. Not retryable.
type ErrQueryFailed struct {
	*BaseError
	Query string
}

func NewQueryFailed(query string, err error) *ErrQueryFailed {
	return &ErrQueryFailed{
		BaseError: NewBaseError(ErrorTypeQuery, "query failed", err),
		Query:     query,
	}
}

// Pool Errors

// ErrPoolExhausted is returned when no session became available within
// the acquisition timeout
type ErrPoolExhausted struct {
	*BaseError
	Timeout time.Duration
}

func NewPoolExhausted(timeout time.Duration) *ErrPoolExhausted {
	return &ErrPoolExhausted{
		BaseError: NewBaseError(ErrorTypePool, fmt.Sprintf("session pool exhausted after %v", timeout), nil),
		Timeout:   timeout,
	}
}

// ErrPoolClosed is returned when acquiring from a closed pool
var ErrPoolClosed = NewBaseError(ErrorTypePool, "session pool is closed", nil)

// Not Found Errors

// ErrPlatformNotFound is returned when a platform name is unknown to the graph
type ErrPlatformNotFound struct {
	*BaseError
	Platform string
}

func NewPlatformNotFound(platform string) *ErrPlatformNotFound {
	return &ErrPlatformNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("platform not found: %s", platform), nil),
		Platform:  platform,
	}
}

// Rewrite Errors

// ErrRewriteFailed is returned when the rewrite collaborator fails for a platform
type ErrRewriteFailed struct {
	*BaseError
	Platform string
	Attempts int
}

func NewRewriteFailed(platform string, attempts int, err error) *ErrRewriteFailed {
	return &ErrRewriteFailed{
		BaseError: NewBaseError(ErrorTypeRewrite, fmt.Sprintf("rewrite failed for %s after %d attempts", platform, attempts), err),
		Platform:  platform,
		Attempts:  attempts,
	}
}

// ErrRewriteEmptyResponse is returned when the model returns no usable output
var ErrRewriteEmptyResponse = NewBaseError(ErrorTypeRewrite, "empty response from rewrite model", nil)

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Context Errors

// ErrContextCancelled is returned when a unit of work is abandoned
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if categorized, ok := err.(interface{ Category() ErrorType }); ok {
			return categorized.Category() == errType
		}
		wrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapped.Unwrap()
	}
	return false
}

// IsRetryable reports whether a failed operation may be retried.
// Connectivity and pool exhaustion are transient; query and not-found
// errors are not, and cancelled contexts never retry.
func IsRetryable(err error) bool {
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	if IsErrorType(err, ErrorTypeQuery) || IsErrorType(err, ErrorTypeNotFound) {
		return false
	}
	if IsErrorType(err, ErrorTypeGraph) || IsErrorType(err, ErrorTypePool) {
		return true
	}
	return false
}
