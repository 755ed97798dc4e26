// Package errs defines the error taxonomy shared by the runner, downloader,
// and installation orchestrator. Errors carry a Kind so callers can react to
// cancellation, timeouts, and tool failures by identity instead of matching
// message text.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindCancelled is a user or session abort. Benign; exits 0.
	KindCancelled Kind = iota
	// KindTimeout means an operation exceeded its budget.
	KindTimeout
	// KindNetwork is a download or HTTP failure.
	KindNetwork
	// KindNonZeroExit means an external tool reported failure.
	KindNonZeroExit
	// KindIO is a filesystem permission or space failure.
	KindIO
	// KindUnsupportedPlatform is fatal and not retryable.
	KindUnsupportedPlatform
)

var kindNames = map[Kind]string{
	KindCancelled:           "cancelled",
	KindTimeout:             "timeout",
	KindNetwork:             "network error",
	KindNonZeroExit:         "command failed",
	KindIO:                  "io error",
	KindUnsupportedPlatform: "unsupported platform",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown error"
}

// Error is a kind-tagged error with an optional remedy suggestion.
type Error struct {
	Kind   Kind
	Remedy string
	msg    string
	err    error
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a kind.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// WithRemedy attaches a one-line suggested fix and returns the error.
func (e *Error) WithRemedy(format string, args ...interface{}) *Error {
	e.Remedy = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsCancelled reports whether err is a cancellation, either through the
// taxonomy or a raw context error.
func IsCancelled(err error) bool {
	if Is(err, KindCancelled) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// RemedyOf returns the remedy suggestion attached to err, if any.
func RemedyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Remedy
	}
	return ""
}
