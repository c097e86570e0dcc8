package errors

import (
	"errors"
	"fmt"
)

// Error types for different failure domains
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeDataFormat   ErrorType = "data_format"
	ErrorTypeAnalysis     ErrorType = "analysis"
	ErrorTypeCancelled    ErrorType = "cancelled"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithStatus overrides the HTTP status a constructor chose.
func (e *AppError) WithStatus(status int) *AppError {
	e.StatusCode = status
	return e
}

// Error constructors

// NewValidationError covers recoverable row-level input problems. These are
// accumulated into the dropped-row count rather than surfaced individually.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

// NewDataFormatError fails the whole run: unparseable input or malformed-row
// ratio above tolerance. Nothing partial is returned.
func NewDataFormatError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDataFormat,
		Code:       "DATA_FORMAT_INVALID",
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

// NewAnalysisError signals an internal invariant violation in the detection
// core. Always fatal, never swallowed.
func NewAnalysisError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAnalysis,
		Code:       "ANALYSIS_INVARIANT_VIOLATION",
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

// NewCancelledError reports a cooperative abort of an analysis run.
func NewCancelledError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeCancelled,
		Code:       "RUN_CANCELLED",
		Message:    message,
		Retryable:  true,
		StatusCode: 499,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		Retryable:  false,
		StatusCode: 401,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
