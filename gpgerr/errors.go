// Package gpgerr defines the error taxonomy shared by the gpgcore packages.
//
// Every failure reported by the data, iobridge, status, passphrase and escape
// packages is (or wraps) an *Error carrying one of a small set of kinds.
// Callers branch on the kind, never on the message:
//
//	if errors.Is(err, gpgerr.ErrNoPassphrase) {
//	    // ask the user again or give up
//	}
//
// The sentinels below match any *Error of the same kind, so an IO error
// produced deep inside a relay still satisfies errors.Is(err, gpgerr.ErrIO)
// while errors.Unwrap exposes the underlying cause (e.g. unix.EPIPE).
package gpgerr

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindInvalidHandle reports a nil or already released handle.
	KindInvalidHandle Kind = "InvalidHandle"
	// KindUnsupported reports a capability the backing store does not implement.
	KindUnsupported Kind = "Unsupported"
	// KindIO reports a capability or descriptor operation that ran and failed.
	KindIO Kind = "IOError"
	// KindOutOfMemory reports an allocation that could not be satisfied.
	KindOutOfMemory Kind = "OutOfMemory"
	// KindInvalidValue reports an argument outside its permitted range.
	KindInvalidValue Kind = "InvalidValue"
	// KindNoPassphrase reports a passphrase negotiation that ended without
	// a usable passphrase.
	KindNoPassphrase Kind = "NoPassphrase"
)

// Error is the structured error type.
//
// Op names the operation that failed ("data read", "outbound write").
// Cause is the underlying failure, if any.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with an
// Op only matches errors for that operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// Sentinels for errors.Is. They carry no Op, so they match every operation.
var (
	ErrInvalidHandle = &Error{Kind: KindInvalidHandle}
	ErrUnsupported   = &Error{Kind: KindUnsupported}
	ErrIO            = &Error{Kind: KindIO}
	ErrOutOfMemory   = &Error{Kind: KindOutOfMemory}
	ErrInvalidValue  = &Error{Kind: KindInvalidValue}
	ErrNoPassphrase  = &Error{Kind: KindNoPassphrase}
)

// New returns an error of the given kind for op.
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// Wrap returns an error of the given kind for op with cause attached.
func Wrap(kind Kind, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// IO wraps cause as an IO error for op.
func IO(op string, cause error) error {
	return Wrap(KindIO, op, cause)
}

// Invalid returns an InvalidValue error with a formatted explanation.
func Invalid(op, format string, args ...any) error {
	return Wrap(KindInvalidValue, op, fmt.Errorf(format, args...))
}

// IsKind reports whether err is (or wraps) an *Error with the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
