// Package liberr is the closed set of failures returned by the send-modes library.
//
// Every external failure (HTTP status, driver error, cache reply, decode error) is
// translated into one of these kinds where it is first observed. Callers match them
// with errors.Is.
package liberr

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("request timeout")
	ErrTransport         = errors.New("transport error")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidDeviceMode = errors.New("invalid device mode")
)

// TransportError is a failure of the underlying transport (network, driver, cache connection).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ErrTransport.Error()
	}
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// NotFoundError names the resource that was looked up.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + ", not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func Transport(err error) error { return &TransportError{Err: err} }

func NotFound(resource string) error { return &NotFoundError{Resource: resource} }

func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// InternalCause wraps err as an internal failure keeping it in the chain.
func InternalCause(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, msg, err)
}

func InvalidDeviceMode(value string) error {
	return fmt.Errorf("%w: %q", ErrInvalidDeviceMode, value)
}

// IsTransient reports whether err is eligible for retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport)
}

// FromContext maps a context error into the taxonomy. It returns nil for nil.
func FromContext(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return Transport(err)
	}
}

type Kind string

const (
	KindNone              Kind = "ok"
	KindInternal          Kind = "internal"
	KindTimeout           Kind = "timeout"
	KindTransport         Kind = "transport"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindInvalidDeviceMode Kind = "invalid_device_mode"
)

// KindOf classifies err. Errors outside the taxonomy are reported as internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidDeviceMode):
		return KindInvalidDeviceMode
	default:
		return KindInternal
	}
}
