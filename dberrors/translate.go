package dberrors

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Code is a raw connection error code as surfaced by the backend client or
// the transport underneath it.
type Code string

const (
	CodeConnectionRefused Code = "ECONNREFUSED"
	CodeAccessDenied      Code = "ER_ACCESS_DENIED_ERROR"
	CodeHostNotFound      Code = "ENOTFOUND"
	CodeHostUnreachable   Code = "EHOSTUNREACH"
	CodeInvalid           Code = "EINVAL"
	CodeTimeout           Code = "ETIMEDOUT"
)

// Translate maps a raw code to its Kind. Unknown codes fall back to
// ConnectionError.
func Translate(code Code) Kind {
	switch code {
	case CodeConnectionRefused:
		return ConnectionRefused
	case CodeAccessDenied:
		return AccessDenied
	case CodeHostNotFound:
		return HostNotFound
	case CodeHostUnreachable:
		return HostNotReachable
	case CodeInvalid:
		return InvalidConnection
	case CodeTimeout:
		return Timeout
	default:
		return ConnectionError
	}
}

type codedError struct {
	code Code
	err  error
}

func (c *codedError) Error() string { return c.err.Error() }
func (c *codedError) Unwrap() error { return c.err }
func (c *codedError) Code() Code    { return c.code }

// WithCode attaches a raw code to err. Providers use it to classify errors
// that only they know how to read (gRPC statuses, SQLSTATEs).
func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// CodeOf extracts the raw code from err. It returns "" when no code is known.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	var coded interface{ Code() Code }
	if errors.As(err, &coded) {
		return coded.Code()
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return CodeHostNotFound
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeConnectionRefused
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return CodeHostUnreachable
	case errors.Is(err, syscall.EINVAL):
		return CodeInvalid
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return CodeAccessDenied
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, syscall.ETIMEDOUT):
		return CodeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	return ""
}

// Wrap translates a raw failure into an *Error. Errors that already carry a
// kind are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(Translate(CodeOf(err)), op, err)
}
