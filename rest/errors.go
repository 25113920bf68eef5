package rest

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which branch of the error taxonomy an Error belongs to
type Kind int

const (
	// KindUnknown is the zero value and never produced by the classifier
	KindUnknown Kind = iota
	// KindAuthenticationFailed indicates a 401 or 403 response
	KindAuthenticationFailed
	// KindResourceNotFound indicates a 404 response
	KindResourceNotFound
	// KindRequestFailed indicates any other response with status >= 400
	KindRequestFailed
	// KindMalformedResponse indicates a body that is not valid JSON
	KindMalformedResponse
	// KindServerReportedError indicates a JSON object carrying errorMessages
	KindServerReportedError
	// KindTransportFailure indicates the call did not complete
	KindTransportFailure
	// KindContractViolation indicates a request rejected locally before sending
	KindContractViolation
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindResourceNotFound:
		return "resource not found"
	case KindRequestFailed:
		return "request failed"
	case KindMalformedResponse:
		return "malformed response"
	case KindServerReportedError:
		return "server reported error"
	case KindTransportFailure:
		return "transport failure"
	case KindContractViolation:
		return "contract violation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrNotFound             = &Error{Kind: KindResourceNotFound}
	ErrRequestFailed        = &Error{Kind: KindRequestFailed}
	ErrMalformedResponse    = &Error{Kind: KindMalformedResponse}
	ErrServerReported       = &Error{Kind: KindServerReportedError}
	ErrTransport            = &Error{Kind: KindTransportFailure}
	ErrContractViolation    = &Error{Kind: KindContractViolation}
)

// ErrInvalidConfig indicates invalid client configuration
var ErrInvalidConfig = errors.New("invalid client configuration")

// Error is the single failure type surfaced by the execution pipeline.
// Kind selects which of the other fields are meaningful.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Messages   []string
	Reason     string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindAuthenticationFailed, KindResourceNotFound:
		return fmt.Sprintf("%s: status %d: response content: %s", e.Kind, e.StatusCode, e.Body)
	case KindRequestFailed:
		return fmt.Sprintf("%s: response status code: %d. response content: %s", e.Kind, e.StatusCode, e.Body)
	case KindMalformedResponse:
		if e.Reason != "" {
			return fmt.Sprintf("%s: %s. content: %s", e.Kind, e.Reason, e.Body)
		}
		return fmt.Sprintf("%s: content: %s", e.Kind, e.Body)
	case KindServerReportedError:
		return fmt.Sprintf("response reported error(s) from jira: %s", strings.Join(e.Messages, "; "))
	default:
		if e.Reason != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
		}
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == KindResourceNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.Kind == KindAuthenticationFailed
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func contractViolation(format string, args ...any) *Error {
	return &Error{Kind: KindContractViolation, Reason: fmt.Sprintf(format, args...)}
}

func transportFailure(reason string, err error) *Error {
	return &Error{Kind: KindTransportFailure, Reason: reason, Err: err}
}
