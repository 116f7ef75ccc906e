package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind represents the category of a pipeline failure
type Kind string

const (
	KindTransport  Kind = "transport"
	KindValidation Kind = "validation"
	KindModel      Kind = "model"
	KindArtifact   Kind = "artifact"
	KindInternal   Kind = "internal"
)

// AppError represents a structured pipeline error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates an error for network or timeout failures of an external dependency
func NewTransportError(message string, cause error) *AppError {
	return &AppError{Kind: KindTransport, Message: message, Cause: cause}
}

// NewValidationError creates an error for empty or corrupt audio and image payloads
func NewValidationError(message string, cause error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Cause: cause}
}

// NewModelError creates an error for inference failures or malformed model output
func NewModelError(message string, cause error) *AppError {
	return &AppError{Kind: KindModel, Message: message, Cause: cause}
}

// NewArtifactError creates an error for expected output files that are absent
func NewArtifactError(message string, cause error) *AppError {
	return &AppError{Kind: KindArtifact, Message: message, Cause: cause}
}

// NewInternalError creates an error for everything else
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// FromCall classifies an error returned by a call to an external service.
// Deadlines, cancellations and net errors are transport failures, anything
// else is attributed to the given fallback kind.
func FromCall(message string, err error, fallback Kind) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if IsTransient(err) {
		return NewTransportError(message, err)
	}
	return &AppError{Kind: fallback, Message: message, Cause: err}
}

// IsTransient reports whether err looks like a network or timeout failure
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// KindOf extracts the error kind, defaulting to internal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind checks if the error is of a specific kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
