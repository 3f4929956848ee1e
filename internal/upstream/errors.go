package upstream

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed classification of a failed scoring attempt. Every
// transport or protocol outcome maps onto exactly one kind; the retry policy
// and the orchestrator match on kinds, never on raw errors or status codes.
type ErrorKind int

const (
	// KindTimeout covers connection-establishment failures, read timeouts,
	// and the upstream's own 504.
	KindTimeout ErrorKind = iota
	// KindAuth is a 401/403 from the upstream. Never retried.
	KindAuth
	// KindRateLimit is a 429 from the upstream.
	KindRateLimit
	// KindUpstream covers 5xx responses, unexpected statuses, and malformed
	// response bodies.
	KindUpstream
	// KindCanceled means the caller abandoned the request. Not a statement
	// about upstream health; never retried and never recorded in the breaker.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindUpstream:
		return "upstream_error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether a repeated attempt has a reasonable chance of
// succeeding.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindTimeout, KindRateLimit, KindUpstream:
		return true
	default:
		return false
	}
}

// Error is a classified scoring failure.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status when one was received, 0 otherwise
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("riskshield %s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("riskshield %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return 0, false
}

// IsRetryable reports whether err is a classified, retryable failure.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind.Retryable()
}
