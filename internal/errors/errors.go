// Package errors provides custom error types for the sanai client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed      = errors.New("authentication failed")
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
	ErrBusy            = errors.New("a request is already pending")
	ErrEmptyInput      = errors.New("nothing to send")
	ErrNotImage        = errors.New("file is not an image")
	ErrTooLarge        = errors.New("file is too large")
)

// APIError represents a non-success HTTP response from a remote service
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Status     string // service status string, e.g. RESOURCE_EXHAUSTED
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Is matches ErrAuthFailed for 401/403 responses
func (e *APIError) Is(target error) bool {
	if target == ErrAuthFailed {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	_, ok := target.(*APIError)
	return ok
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NetworkError represents a transport-level failure
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is matches context.DeadlineExceeded
func (e *TimeoutError) Is(target error) bool {
	return target == context.DeadlineExceeded
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// BlockedError represents a prompt rejected by the service safety filters
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return "content blocked"
	}
	return fmt.Sprintf("content blocked: %s", e.Reason)
}

// NewBlockedError creates a new BlockedError
func NewBlockedError(reason string) *BlockedError {
	return &BlockedError{Reason: reason}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// DownloadError represents a failure while saving a remote image
type DownloadError struct {
	URL        string
	Message    string
	StatusCode int
}

func (e *DownloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download failed [%d]: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("download failed: %s", e.Message)
}

// NewDownloadError creates a new DownloadError
func NewDownloadError(message, url string) *DownloadError {
	return &DownloadError{Message: message, URL: url}
}

// NewDownloadErrorWithStatus creates a DownloadError for a bad HTTP status
func NewDownloadErrorWithStatus(url string, status int) *DownloadError {
	return &DownloadError{URL: url, StatusCode: status, Message: http.StatusText(status)}
}

// GetHTTPStatus extracts the HTTP status code from an error chain, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether the API key was rejected
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNoAPIKey)
}

// IsRateLimitError reports whether the service refused the request for quota reasons
func IsRateLimitError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}

// IsNetworkError reports whether the error happened at the transport layer
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether the request timed out
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded)
}

// IsBlockedError reports whether the prompt was blocked
func IsBlockedError(err error) bool {
	var blockedErr *BlockedError
	return errors.As(err, &blockedErr)
}
