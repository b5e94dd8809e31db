// Package esmeerr classifies every failure the client produces into one
// of seven kinds, so callers can decide how to react (reconnect, back
// off, report to the application) without type-switching on every
// concrete error the stack can surface.
package esmeerr

import "fmt"

// Kind names how a failure propagates: what tears the session down,
// what feeds the throttle, and what is reported to the application.
type Kind int

const (
	KindProtocolParse Kind = iota
	KindProtocolStatus
	KindTransport
	KindTimeout
	KindThrottle
	KindValidation
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindProtocolParse:
		return "protocol_parse"
	case KindProtocolStatus:
		return "protocol_status"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindThrottle:
		return "throttle"
	case KindValidation:
		return "validation"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the kind it propagates as, so a
// Hook implementation can branch on Kind() instead of string-matching.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// New builds an Error of the given kind, wrapping cause (which may be
// nil for a kind with no underlying error, e.g. a plain validation
// message).
func New(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Temporary reports whether retrying the same operation later might
// succeed: throttle and timeout kinds are, by construction, never
// terminal for the session as a whole.
func (e *Error) Temporary() bool {
	return e.kind == KindThrottle || e.kind == KindTimeout
}
