// Package apperr defines the coded error type shared by the match client, the
// game engine and the HTTP layers.
package apperr

import "errors"

// Code identifies a class of failure.
type Code string

const (
	// CodeTransport is an I/O-level failure talking to the match service,
	// including malformed responses.
	CodeTransport Code = "TRANSPORT"
	// CodeRejected means the match service explicitly declined a report.
	CodeRejected Code = "REJECTED"
	// CodeConfig means a fetched match configuration is structurally invalid.
	CodeConfig Code = "CONFIG"
	// CodeInvalidMove is a state machine contract violation: wrong turn,
	// game already over, or engine busy.
	CodeInvalidMove Code = "INVALID_MOVE"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrTransport   = New(CodeTransport, "match service transport failure")
	ErrRejected    = New(CodeRejected, "match service rejected the request")
	ErrConfig      = New(CodeConfig, "invalid match configuration")
	ErrInvalidMove = New(CodeInvalidMove, "invalid move")
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message
	Metadata map[string]string // Additional context (match id, player index...)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error carrying metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithMetadata creates a domain error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
		Cause:    cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
