package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoStackTrace indicates the error report carried no parseable exception/stack shape
	NoStackTrace ErrorCode = "NO_STACK_TRACE"
	// NoApplicationFiles indicates a trace was present but every frame was vendor/runtime code
	NoApplicationFiles ErrorCode = "NO_APPLICATION_FILES"
	// NoFilesRetrieved indicates candidates existed but none could be fetched
	NoFilesRetrieved ErrorCode = "NO_FILES_RETRIEVED"
	// TransportError indicates a genuine, non-absent failure from the file fetcher
	TransportError ErrorCode = "TRANSPORT_ERROR"
	// ConfigInvalid indicates the loaded configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StorageError indicates the diagnostics journal could not be read or written
	StorageError ErrorCode = "STORAGE_ERROR"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError represents a stacklens failure with a stable code and message
type AnalysisError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new AnalysisError
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, or InternalError when err carries none.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
