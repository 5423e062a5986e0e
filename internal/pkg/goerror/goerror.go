// Package goerror defines the structured error type used across the
// application.
//
// Every failure surfaced to a caller carries a stable machine-readable Kind
// plus a human-readable message. Handlers map Kinds to HTTP status codes;
// business code matches on Kind (or the repo sentinels) with errors.Is/As.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNotFound indicates that the requested record could not be found.
	// Returned by store implementations; use cases translate it.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness conflict on create.
	ErrConflict = errors.New("record conflict")
)

// Kind is the stable machine-readable classification of a failure.
type Kind int

const (
	// KindInternal represents an unexpected server-side failure.
	KindInternal Kind = iota
	// KindInvalidIdentity indicates a malformed identity (e.g. bad email).
	KindInvalidIdentity
	// KindRateLimited indicates the caller must wait before retrying.
	KindRateLimited
	// KindNotFound indicates no outstanding challenge or record.
	KindNotFound
	// KindExpired indicates the challenge validity window has passed.
	KindExpired
	// KindTooManyAttempts indicates the attempt ceiling was reached.
	KindTooManyAttempts
	// KindInvalidCode indicates the submitted passcode did not match.
	KindInvalidCode
	// KindInvalidToken indicates a federated token failed verification.
	KindInvalidToken
	// KindUnavailable indicates a transient infrastructure failure;
	// safe to retry, no partial state mutation occurred.
	KindUnavailable
	// KindInvalidFormat indicates a malformed request payload.
	KindInvalidFormat
)

// String returns the wire representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidIdentity:
		return "INVALID_IDENTITY"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindExpired:
		return "EXPIRED"
	case KindTooManyAttempts:
		return "TOO_MANY_ATTEMPTS"
	case KindInvalidCode:
		return "INVALID_CODE"
	case KindInvalidToken:
		return "INVALID_TOKEN"
	case KindUnavailable:
		return "UNAVAILABLE"
	case KindInvalidFormat:
		return "INVALID_FORMAT"
	default:
		return "INTERNAL"
	}
}

// Error is the structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a stable kind, optional field-level validation details, and an optional
// retry-after hint for rate-limited operations.
type Error struct {
	err        error
	msg        string
	kind       Kind
	fields     map[string]string
	retryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.kind.String()
}

// String returns a verbose representation for debugging and logging.
func (e *Error) String() string {
	return fmt.Sprintf("Kind: %s, Message: %s, Underlying: %v", e.kind, e.msg, e.err)
}

// Msg returns the user-facing error message.
func (e *Error) Msg() string {
	return e.msg
}

// Kind returns the stable error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Fields returns field-level validation errors, if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// RetryAfter returns the wait hint for rate-limited errors (zero otherwise).
func (e *Error) RetryAfter() time.Duration {
	return e.retryAfter
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error kind to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.kind {
	case KindInvalidIdentity:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindExpired, KindInvalidCode, KindInvalidToken:
		return http.StatusUnauthorized
	case KindTooManyAttempts:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is a *Error with the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == k
}

// NewInvalidIdentity creates an error for a malformed identity. The optional
// underlying err carries validator details.
func NewInvalidIdentity(err error, fields map[string]string) error {
	return &Error{err: err, msg: "Invalid identity", kind: KindInvalidIdentity, fields: fields}
}

// NewRateLimited creates a rate-limit error with a retry-after hint.
func NewRateLimited(msg string, retryAfter time.Duration) error {
	return &Error{msg: msg, kind: KindRateLimited, retryAfter: retryAfter}
}

// NewNotFound creates an error for a missing record or challenge.
func NewNotFound(msg string) error {
	return &Error{msg: msg, kind: KindNotFound}
}

// NewExpired creates an error for an expired challenge.
func NewExpired(msg string) error {
	return &Error{msg: msg, kind: KindExpired}
}

// NewTooManyAttempts creates an error for an exhausted attempt ceiling.
func NewTooManyAttempts(msg string) error {
	return &Error{msg: msg, kind: KindTooManyAttempts}
}

// NewInvalidCode creates an error for a mismatched passcode.
func NewInvalidCode(msg string) error {
	return &Error{msg: msg, kind: KindInvalidCode}
}

// NewInvalidToken creates an error for a failed federated token verification.
func NewInvalidToken(err error) error {
	return &Error{err: err, msg: "Invalid or expired token", kind: KindInvalidToken}
}

// NewUnavailable creates an error for a transient infrastructure failure.
func NewUnavailable(err error) error {
	return &Error{err: err, msg: "Service temporarily unavailable", kind: KindUnavailable}
}

// NewInvalidFormat creates an error for a malformed request payload. An
// optional message overrides the default.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request format"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, kind: KindInvalidFormat}
}

// NewServer creates an internal error wrapping err.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", kind: KindInternal}
}
