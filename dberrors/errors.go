// Package dberrors holds the closed set of failure kinds reported by the
// Cloud Spanner dialect and the translation of raw connection error codes
// into those kinds.
package dberrors

import (
	"errors"
	"fmt"
)

// Kind is a normalized failure category. Kind implements error so a kind can
// be used as the target of errors.Is.
type Kind uint8

const (
	// ConnectionError is the generic fallback for connection failures.
	ConnectionError Kind = iota
	ConnectionRefused
	AccessDenied
	HostNotFound
	HostNotReachable
	InvalidConnection
	// Timeout is returned when a connect deadline expires.
	Timeout
	UnsupportedType
	Serialization
	Parse
)

var kindNames = [...]string{
	ConnectionError:   "ConnectionError",
	ConnectionRefused: "ConnectionRefusedError",
	AccessDenied:      "AccessDeniedError",
	HostNotFound:      "HostNotFoundError",
	HostNotReachable:  "HostNotReachableError",
	InvalidConnection: "InvalidConnectionError",
	Timeout:           "TimeoutError",
	UnsupportedType:   "UnsupportedTypeError",
	Serialization:     "SerializationError",
	Parse:             "ParseError",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) Error() string { return k.String() }

// IsConnection reports whether k belongs to the connection family.
func (k Kind) IsConnection() bool {
	return k <= Timeout
}

// Error is a failure of one Kind with the original failure attached.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New creates an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates an Error of the given kind with a formatted cause.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind target against the error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind carried by err. The second result is false when err
// carries no kind.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return ConnectionError, false
}
