// Package errors defines custom error types and error handling utilities for the KAM service.
// This package provides structured error types that map to stable error codes and HTTP status codes.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies a category of failure across the service
type ErrorCode string

const (
	// ErrCodeAuthRequest covers failures while creating a device authorization
	ErrCodeAuthRequest ErrorCode = "auth_request_failed"

	// ErrCodeAuthExpired indicates the device code expired before approval
	ErrCodeAuthExpired ErrorCode = "auth_expired"

	// ErrCodeAuthDenied indicates the user rejected the authorization
	ErrCodeAuthDenied ErrorCode = "auth_denied"

	// ErrCodeAuthTransport covers transport failures while polling the token endpoint
	ErrCodeAuthTransport ErrorCode = "auth_transport_failed"

	// ErrCodeAlreadyRunning indicates a batch run is already active
	ErrCodeAlreadyRunning ErrorCode = "already_running"

	// ErrCodeNotRunning indicates no batch run is active
	ErrCodeNotRunning ErrorCode = "not_running"

	// ErrCodeValidation covers rejected input parameters
	ErrCodeValidation ErrorCode = "validation_failed"

	// ErrCodeRegistrationItem covers a failed registration attempt within a batch
	ErrCodeRegistrationItem ErrorCode = "registration_item_failed"

	// ErrCodeExport covers history export failures
	ErrCodeExport ErrorCode = "export_failed"

	// ErrCodePersistence covers storage layer failures
	ErrCodePersistence ErrorCode = "persistence_failed"

	// ErrCodeNotFound indicates a requested resource does not exist
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeServer covers unexpected internal failures
	ErrCodeServer ErrorCode = "server_error"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// KamError represents a structured error with additional metadata
type KamError interface {
	error

	// Code returns the stable error code
	Code() ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) KamError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) KamError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of KamError
type baseError struct {
	code        ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

// Code returns the stable error code
func (e *baseError) Code() ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code
func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

// Description returns the error description
func (e *baseError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause error
func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) KamError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) KamError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new KamError with the specified parameters
func NewError(code ErrorCode, httpStatus int, description string, message string) KamError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrAuthRequest creates a device authorization request error
func ErrAuthRequest(message string) KamError {
	return NewError(
		ErrCodeAuthRequest,
		http.StatusBadGateway,
		"The identity provider rejected or failed the device authorization request.",
		message,
	)
}

// ErrAuthExpired creates a device code expired error
func ErrAuthExpired() KamError {
	return NewError(
		ErrCodeAuthExpired,
		http.StatusGone,
		"The device code expired before the user approved the authorization.",
		"device code expired",
	)
}

// ErrAuthDenied creates an access denied error
func ErrAuthDenied() KamError {
	return NewError(
		ErrCodeAuthDenied,
		http.StatusForbidden,
		"The user rejected the device authorization request.",
		"authorization denied by user",
	)
}

// ErrAuthTransport creates a token polling transport error
func ErrAuthTransport(message string) KamError {
	return NewError(
		ErrCodeAuthTransport,
		http.StatusBadGateway,
		"A transport failure occurred while polling the token endpoint.",
		message,
	)
}

// ErrAlreadyRunning creates an error for starting a batch while one is active
func ErrAlreadyRunning() KamError {
	return NewError(
		ErrCodeAlreadyRunning,
		http.StatusConflict,
		"A batch registration run is already in progress.",
		"registration already running",
	)
}

// ErrNotRunning creates an error for stopping when no batch is active
func ErrNotRunning() KamError {
	return NewError(
		ErrCodeNotRunning,
		http.StatusConflict,
		"No batch registration run is in progress.",
		"no registration running",
	)
}

// ErrValidation creates a parameter validation error
func ErrValidation(message string) KamError {
	return NewError(
		ErrCodeValidation,
		http.StatusBadRequest,
		"The request contains an invalid or out-of-range parameter.",
		message,
	)
}

// ErrRegistrationItem creates an error for a failed item within a batch run
func ErrRegistrationItem(index int, cause error) KamError {
	return NewError(
		ErrCodeRegistrationItem,
		http.StatusInternalServerError,
		"An account registration attempt failed.",
		fmt.Sprintf("registration %d failed: %v", index, cause),
	).WithCause(cause).WithMetadata("index", index)
}

// ErrExport creates a history export error
func ErrExport(path string, cause error) KamError {
	return NewError(
		ErrCodeExport,
		http.StatusInternalServerError,
		"Writing the history export file failed.",
		fmt.Sprintf("export to %s failed: %v", path, cause),
	).WithCause(cause).WithMetadata("path", path)
}

// ErrPersistence creates a storage layer error
func ErrPersistence(message string) KamError {
	return NewError(
		ErrCodePersistence,
		http.StatusInternalServerError,
		"A storage operation failed.",
		message,
	)
}

// ErrNotFound creates a resource not found error
func ErrNotFound(resource string) KamError {
	return NewError(
		ErrCodeNotFound,
		http.StatusNotFound,
		"The requested resource does not exist.",
		fmt.Sprintf("%s not found", resource),
	).WithMetadata("resource", resource)
}

// ErrServer creates a generic internal error
func ErrServer(message string) KamError {
	return NewError(
		ErrCodeServer,
		http.StatusInternalServerError,
		"The service encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// IsKamError checks if an error is a KamError
func IsKamError(err error) bool {
	_, ok := err.(KamError)
	return ok
}

// AsKamError attempts to cast an error to KamError
func AsKamError(err error) (KamError, bool) {
	kamErr, ok := err.(KamError)
	return kamErr, ok
}

// HasCode reports whether err is a KamError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	if kamErr, ok := AsKamError(err); ok {
		return kamErr.Code() == code
	}
	return false
}

// WrapError wraps a generic error into a KamError
func WrapError(err error, code ErrorCode, message string) KamError {
	var httpStatus int

	switch code {
	case ErrCodeValidation:
		httpStatus = http.StatusBadRequest
	case ErrCodeAuthDenied:
		httpStatus = http.StatusForbidden
	case ErrCodeAuthExpired:
		httpStatus = http.StatusGone
	case ErrCodeAlreadyRunning, ErrCodeNotRunning:
		httpStatus = http.StatusConflict
	case ErrCodeNotFound:
		httpStatus = http.StatusNotFound
	case ErrCodeAuthRequest, ErrCodeAuthTransport:
		httpStatus = http.StatusBadGateway
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts a KamError to an ErrorResponse
func ToErrorResponse(err KamError) *ErrorResponse {
	return &ErrorResponse{
		Error:            string(err.Code()),
		ErrorDescription: err.Description(),
		Metadata:         err.Metadata(),
	}
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) *ErrorResponse {
	if kamErr, ok := AsKamError(err); ok {
		return ToErrorResponse(kamErr)
	}

	return &ErrorResponse{
		Error:            string(ErrCodeServer),
		ErrorDescription: "An unexpected error occurred",
	}
}

// ================================================================================
// Error Classification Utilities
// ================================================================================

// IsTerminalAuthError reports whether err ends a device authorization session
func IsTerminalAuthError(err error) bool {
	if kamErr, ok := AsKamError(err); ok {
		code := kamErr.Code()
		return code == ErrCodeAuthExpired ||
			code == ErrCodeAuthDenied ||
			code == ErrCodeAuthTransport
	}
	return false
}

// ShouldLogError determines if an error should be logged based on severity
func ShouldLogError(err error) bool {
	if kamErr, ok := AsKamError(err); ok {
		return kamErr.HTTPStatus() >= 500
	}
	return true
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}
