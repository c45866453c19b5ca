package errors

import (
	"fmt"
	"net/http"

	"assettrack/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError with the same business code, so copies made by
// WithDetails still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Authentication
	ErrAuthRequired = NewBaseError(
		http.StatusUnauthorized,
		"AUTH_REQUIRED",
		"No authentication token found, please login",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"Session expired, please login again",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authentication failed, please login again",
		"",
	)

	// Assets
	ErrAssetNotFound = NewBaseError(
		http.StatusNotFound,
		"ASSET_NOT_FOUND",
		"Asset not found",
		"",
	)

	ErrSubAssetNotFound = NewBaseError(
		http.StatusNotFound,
		"SUB_ASSET_NOT_FOUND",
		"Sub-asset not found",
		"",
	)

	ErrValidation = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_ERROR",
		"Invalid input",
		"",
	)

	ErrInvalidScanPayload = NewBaseError(
		http.StatusBadRequest,
		"INVALID_SCAN_PAYLOAD",
		"Scanned code is not a valid asset tag",
		"",
	)

	// Digital tags
	ErrGenerationInProgress = NewBaseError(
		http.StatusConflict,
		"GENERATION_IN_PROGRESS",
		"Tag generation is already running for this asset",
		"",
	)

	ErrTagNotReady = NewBaseError(
		http.StatusGatewayTimeout,
		"TAG_NOT_READY",
		"Tag was requested but the generated image is not available yet",
		"",
	)

	ErrTagNotGenerated = NewBaseError(
		http.StatusNotFound,
		"TAG_NOT_GENERATED",
		"Asset has no generated tag of this kind",
		"",
	)

	// Backend
	ErrUpstream = NewBaseError(
		http.StatusBadGateway,
		"UPSTREAM_ERROR",
		"Asset backend request failed",
		"",
	)

	// Reports
	ErrExportFailed = NewBaseError(
		http.StatusInternalServerError,
		"EXPORT_FAILED",
		"Failed to export report",
		"",
	)

	ErrUnsupportedFormat = NewBaseError(
		http.StatusBadRequest,
		"UNSUPPORTED_FORMAT",
		"Unsupported export format",
		"",
	)
)

// APIError is a failed call to the asset backend, implementing the AppError interface
type APIError struct {
	StatusCode int
	message    string
}

// NewAPIError creates an upstream error. An empty message falls back to the
// generic status text.
func NewAPIError(statusCode int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", statusCode)
	}

	return &APIError{StatusCode: statusCode, message: message}
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.message
}

// HTTPCode passes client errors through and reports server errors as a bad gateway
func (e *APIError) HTTPCode() int {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode
	}

	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *APIError) ErrorCode() string {
	return ErrUpstream.ErrorCode()
}

// Message returns the backend message
func (e *APIError) Message() string {
	return e.message
}

// Details returns the upstream status
func (e *APIError) Details() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// Unwrap maps a 401 onto ErrUnauthorized and a 404 onto ErrAssetNotFound so
// callers can branch with errors.Is. Any other status matches ErrUpstream.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrAssetNotFound
	default:
		return ErrUpstream
	}
}
