package codevf

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of an SDK error.
type Kind string

const (
	// KindConnection indicates no response was received (dial failure, timeout, cancellation).
	KindConnection Kind = "connection_error"
	// KindValidation indicates malformed caller input caught before any network call.
	KindValidation Kind = "validation_error"
	// KindAPI is the generic kind for a non-2xx response not covered by a specific kind.
	KindAPI Kind = "api_error"

	KindAuthentication  Kind = "authentication_error"
	KindNotFound        Kind = "not_found"
	KindRateLimit       Kind = "rate_limit"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindServer          Kind = "server_error"
	KindBadRequest      Kind = "bad_request"

	KindInvalidMode             Kind = "invalid_mode"
	KindInvalidTag              Kind = "invalid_tag"
	KindInvalidMetadata         Kind = "invalid_metadata"
	KindMaxCreditsExceeded      Kind = "max_credits_exceeded"
	KindAttachmentLimitExceeded Kind = "attachment_limit_exceeded"
	KindAttachmentTooLarge      Kind = "attachment_too_large"
	KindIdempotencyConflict     Kind = "idempotency_conflict"
	KindInsufficientCredits     Kind = "insufficient_credits"
	KindInvalidSchema           Kind = "invalid_schema"
)

// Error is returned by every SDK operation that fails.
//
// Errors raised locally (validation, connection) have Status 0. Errors built
// from a service response carry the HTTP status, the service error code when
// one was provided, and the decoded response body.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Code    string
	Body    any
	Context map[string]any
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or the empty Kind if err is not an *Error.
func KindOf(err error) Kind {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr.Kind
	}
	return ""
}

// Helper functions to check error kinds.

// IsAPIError returns true if the error was built from a service response.
func IsAPIError(err error) bool {
	var sdkErr *Error
	return errors.As(err, &sdkErr) && sdkErr.Status > 0
}

// IsLocal returns true if the error was raised before or instead of a response.
func IsLocal(err error) bool {
	var sdkErr *Error
	return errors.As(err, &sdkErr) && sdkErr.Status == 0
}

// IsConnection returns true if no response was received from the service.
func IsConnection(err error) bool {
	return hasKind(err, KindConnection)
}

// IsValidation returns true if the error indicates malformed caller input.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsAuthentication returns true if the API key was rejected or missing.
func IsAuthentication(err error) bool {
	return hasKind(err, KindAuthentication)
}

// IsNotFound returns true if the requested resource does not exist.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsRateLimit returns true if the request was rate limited.
func IsRateLimit(err error) bool {
	return hasKind(err, KindRateLimit)
}

// IsPayloadTooLarge returns true if the request body was rejected as too large.
func IsPayloadTooLarge(err error) bool {
	return hasKind(err, KindPayloadTooLarge)
}

// IsServerError returns true if the service failed with a 5xx status.
func IsServerError(err error) bool {
	return hasKind(err, KindServer)
}

// IsBadRequest returns true for a 400 response without a recognized error code.
func IsBadRequest(err error) bool {
	return hasKind(err, KindBadRequest)
}

// IsInvalidMode returns true if the service tier is not supported.
func IsInvalidMode(err error) bool {
	return hasKind(err, KindInvalidMode)
}

// IsInvalidTag returns true if the tag ID is invalid, unknown or inactive.
func IsInvalidTag(err error) bool {
	return hasKind(err, KindInvalidTag)
}

// IsInvalidMetadata returns true if the task metadata was rejected.
func IsInvalidMetadata(err error) bool {
	return hasKind(err, KindInvalidMetadata)
}

// IsMaxCreditsExceeded returns true if maxCredits is insufficient after multipliers.
func IsMaxCreditsExceeded(err error) bool {
	return hasKind(err, KindMaxCreditsExceeded)
}

// IsAttachmentLimitExceeded returns true if too many attachments were submitted.
func IsAttachmentLimitExceeded(err error) bool {
	return hasKind(err, KindAttachmentLimitExceeded)
}

// IsAttachmentTooLarge returns true if an attachment was rejected.
func IsAttachmentTooLarge(err error) bool {
	return hasKind(err, KindAttachmentTooLarge)
}

// IsIdempotencyConflict returns true if the idempotency key was reused by another key.
func IsIdempotencyConflict(err error) bool {
	return hasKind(err, KindIdempotencyConflict)
}

// IsInsufficientCredits returns true if the account lacks credits for the task.
func IsInsufficientCredits(err error) bool {
	return hasKind(err, KindInsufficientCredits)
}

// IsInvalidSchema returns true if the response schema was rejected.
func IsInvalidSchema(err error) bool {
	return hasKind(err, KindInvalidSchema)
}

// hasKind checks if the error has the given kind.
func hasKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr.Kind == kind
	}
	return false
}

// newLocalError creates an error raised before any request was sent.
func newLocalError(kind Kind, message string, ctx map[string]any) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: ctx,
	}
}

// newValidationError creates a validation error.
func newValidationError(format string, args ...any) *Error {
	return newLocalError(KindValidation, fmt.Sprintf(format, args...), nil)
}

// newConnectionError creates an error for a request that never got a response.
func newConnectionError(method, path string, err error) *Error {
	return &Error{
		Kind:    KindConnection,
		Message: fmt.Sprintf("connection error: %s %s: %v", method, path, err),
		Err:     err,
	}
}

// newResponseError creates an error from a non-2xx response.
func newResponseError(status int, code, message string, body any) *Error {
	return &Error{
		Kind:    resolveKind(status, code),
		Message: message,
		Status:  status,
		Code:    code,
		Body:    body,
	}
}

// resolveKind selects the error kind for a response. Status classes take
// precedence; the service error code is only consulted for 400 responses.
func resolveKind(status int, code string) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuthentication
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindRateLimit
	case status == 413:
		return KindPayloadTooLarge
	case status >= 500 && status < 600:
		return KindServer
	case status == 400:
		if kind, ok := kindForCode(code); ok {
			return kind
		}
		return KindBadRequest
	default:
		return KindAPI
	}
}

// kindForCode maps a service error code to its kind.
func kindForCode(code string) (Kind, bool) {
	switch strings.ToLower(code) {
	case "invalid_mode":
		return KindInvalidMode, true
	case "invalid_tag":
		return KindInvalidTag, true
	case "invalid_metadata":
		return KindInvalidMetadata, true
	case "max_credits_exceeded":
		return KindMaxCreditsExceeded, true
	case "attachment_limit_exceeded":
		return KindAttachmentLimitExceeded, true
	case "attachment_too_large":
		return KindAttachmentTooLarge, true
	case "idempotency_conflict":
		return KindIdempotencyConflict, true
	case "insufficient_credits":
		return KindInsufficientCredits, true
	case "invalid_schema":
		return KindInvalidSchema, true
	case "token_expired":
		return KindAuthentication, true
	case "rate_limit_exceeded":
		return KindRateLimit, true
	default:
		return "", false
	}
}
