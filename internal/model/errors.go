package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an analysis attempt failed
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"  // Bad input, caught before any request
	KindTransport   ErrorKind = "transport"   // Connection refused, timeout
	KindProtocol    ErrorKind = "protocol"    // Non-2xx status or malformed body
	KindApplication ErrorKind = "application" // Service returned an explicit error message
)

// Error is the single error type surfaced to the user for a failed attempt
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int   // HTTP status, when one was received
	Err        error // Underlying cause, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-submitting the same input may succeed
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport
}

// ValidationError reports invalid input
func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// TransportError reports a failure to reach the service
func TransportError(msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Err: cause}
}

// ProtocolError reports an unexpected status or response shape
func ProtocolError(status int, msg string) *Error {
	return &Error{Kind: KindProtocol, Message: msg, StatusCode: status}
}

// ApplicationError reports an error message returned by the service
func ApplicationError(msg string) *Error {
	return &Error{Kind: KindApplication, Message: msg, StatusCode: 200}
}

// AsError extracts an *Error from err; unknown errors become transport errors
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return TransportError(fmt.Sprintf("Request failed: %v", err), err)
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
