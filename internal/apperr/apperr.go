// Package apperr defines the tagged failure type shared by services and
// repositories. Every user-facing failure carries an explicit Kind so the
// HTTP boundary can map it to a status code deterministically, including
// failures raised inside a transaction.
package apperr

import "errors"

// Kind classifies a failure
type Kind int

const (
	// KindInternal is the default for unexpected/storage errors
	KindInternal Kind = iota
	// KindValidation marks malformed or out-of-range input
	KindValidation
	// KindAuthRequired marks requests without a valid session
	KindAuthRequired
	// KindForbidden marks callers lacking the role or ownership needed
	KindForbidden
	// KindNotFound marks missing or invisible resources
	KindNotFound
	// KindConflict marks duplicates and status-mismatched transitions
	KindConflict
)

// Error is a failure with an explicit kind and a short user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error while keeping it available via Unwrap.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors are
// treated as internal failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for an error chain. Untagged
// errors yield a generic message so internals never leak to callers.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
