package docsnap

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EFORMAT      = "format"      // external binary/JSON contract violated
	EINTERNAL    = "internal"    // internal error
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist
	EPROTOCOL    = "protocol"    // non-2xx HTTP response
	ETRANSPORT   = "transport"   // network failure before any HTTP response
	EUNAVAILABLE = "unavailable" // every snapshot acquisition fallback exhausted
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code is one of the application error codes above.
	Code string

	// Message is a human-readable description of the error.
	Message string

	// Status is the HTTP status code for EPROTOCOL errors, zero otherwise.
	Status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docsnap error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusErrorf returns an EPROTOCOL Error carrying the HTTP status code that
// produced it, so callers can distinguish transient server trouble (5xx)
// from a genuinely absent resource (4xx).
func StatusErrorf(status int, format string, args ...any) *Error {
	return &Error{
		Code:    EPROTOCOL,
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Retryable reports whether err represents transient trouble worth retrying:
// a transport-level failure or a 5xx protocol response. Everything else,
// including 4xx responses, fails immediately.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ETRANSPORT:
		return true
	case EPROTOCOL:
		return e.Status >= 500
	}
	return false
}
