package fakeapi

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable code in the service's error envelope.
type ErrorCode string

const (
	ErrCodeUnauthorized            ErrorCode = "unauthorized"
	ErrCodeNotFound                ErrorCode = "not_found"
	ErrCodeValidationFailed        ErrorCode = "validation_error"
	ErrCodeInvalidMode             ErrorCode = "invalid_mode"
	ErrCodeInvalidTag              ErrorCode = "invalid_tag"
	ErrCodeInvalidMetadata         ErrorCode = "invalid_metadata"
	ErrCodeMaxCreditsExceeded      ErrorCode = "max_credits_exceeded"
	ErrCodeAttachmentLimitExceeded ErrorCode = "attachment_limit_exceeded"
	ErrCodeAttachmentTooLarge      ErrorCode = "attachment_too_large"
	ErrCodeIdempotencyConflict     ErrorCode = "idempotency_conflict"
	ErrCodeInsufficientCredits     ErrorCode = "insufficient_credits"
	ErrCodeInvalidSchema           ErrorCode = "invalid_schema"
	ErrCodeNotCancellable          ErrorCode = "task_not_cancellable"
	ErrCodeInternalError           ErrorCode = "internal_error"
)

// ServiceError is an error the fake service reports to clients.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newServiceError(code ErrorCode, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewTaskNotFoundError creates a task not found error.
func NewTaskNotFoundError(id string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("Task %s not found", id),
		Context: map[string]any{"id": id},
	}
}

// NewProjectNotFoundError creates a project not found error.
func NewProjectNotFoundError(id int64) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("Project %d not found", id),
		Context: map[string]any{"id": id},
	}
}

// NewInternalError creates an internal error.
func NewInternalError() *ServiceError {
	return &ServiceError{Code: ErrCodeInternalError, Message: "An internal error occurred"}
}

// statusFor maps an error code to the HTTP status the service answers with.
func statusFor(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeNotCancellable:
		return http.StatusConflict
	case ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
