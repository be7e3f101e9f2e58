package domain

import (
	"errors"
	"fmt"
)

// Category sentinels for failures outside a generation request.
var (
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConfigLoad   = fmt.Errorf("failed to load configuration")
	ErrExport       = fmt.Errorf("transcript export failed")
	ErrHealthCheck  = fmt.Errorf("health check failed")
)

// Request sentinels. Every error returned by a Generator matches exactly one of
// these through errors.Is.
var (
	ErrCancelled      = fmt.Errorf("generation cancelled")
	ErrServerRejected = fmt.Errorf("request rejected by server")
	ErrUnreachable    = fmt.Errorf("generation service unreachable")
	ErrMalformed      = fmt.Errorf("malformed response")
	ErrEmptyResult    = fmt.Errorf("empty result")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Export.Write")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorKind is the closed set of outcomes that end a generation attempt
// without an assistant message.
type ErrorKind string

const (
	KindCancelled      ErrorKind = "cancelled"
	KindServerRejected ErrorKind = "server_rejected"
	KindUnreachable    ErrorKind = "unreachable"
	KindMalformed      ErrorKind = "malformed"
	KindEmptyResult    ErrorKind = "empty_result"
)

var kindSentinels = map[ErrorKind]error{
	KindCancelled:      ErrCancelled,
	KindServerRejected: ErrServerRejected,
	KindUnreachable:    ErrUnreachable,
	KindMalformed:      ErrMalformed,
	KindEmptyResult:    ErrEmptyResult,
}

// Sentinel returns the package sentinel matching k.
func (k ErrorKind) Sentinel() error {
	if s, ok := kindSentinels[k]; ok {
		return s
	}
	return ErrUnreachable
}

// RequestError is a classified generation failure. Status is the HTTP status
// when a response was received, zero otherwise. Detail is the server-provided
// reason, if any.
type RequestError struct {
	Kind   ErrorKind
	Status int
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	msg := e.Kind.Sentinel().Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *RequestError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// NewRequestError creates a RequestError of the given kind.
func NewRequestError(kind ErrorKind, err error) *RequestError {
	return &RequestError{Kind: kind, Err: err}
}

// KindOf returns the ErrorKind carried by err. Errors that were never
// classified are reported as KindUnreachable.
func KindOf(err error) ErrorKind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnreachable
}
