package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by Error
const (
	CodeRequestFailed = "REQUEST_FAILED"
	CodeHTTPStatus    = "HTTP_STATUS"
	CodeDecodeFailed  = "DECODE_FAILED"
	CodeErrorPayload  = "ERROR_PAYLOAD"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeRateLimited   = "RATE_LIMITED"
)

// Error represents a failed call against one provider
type Error struct {
	Provider   Source
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError classifies a non-2xx upstream status into a provider Error
func StatusError(src Source, status int) *Error {
	switch {
	case status == 401 || status == 403:
		return &Error{Provider: src, Code: CodeUnauthorized, Message: "invalid or missing API key", StatusCode: status}
	case status == 429:
		return &Error{Provider: src, Code: CodeRateLimited, Message: "rate limit exceeded", StatusCode: status}
	default:
		return &Error{Provider: src, Code: CodeHTTPStatus, Message: "unexpected response status", StatusCode: status}
	}
}

// RequestError wraps a transport level failure. Timeouts are reported as such
// so the debug trace can tell them apart from refused connections.
func RequestError(src Source, err error) *Error {
	msg := "request failed"
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
		msg = "request timed out"
	}
	return &Error{Provider: src, Code: CodeRequestFailed, Message: msg, Err: err}
}

// DecodeError wraps a payload that could not be parsed
func DecodeError(src Source, err error) *Error {
	return &Error{Provider: src, Code: CodeDecodeFailed, Message: "invalid response payload", Err: err}
}

// PayloadError reports an error-shaped payload returned with a success status
func PayloadError(src Source, message string) *Error {
	if message == "" {
		message = "provider returned an error payload"
	}
	return &Error{Provider: src, Code: CodeErrorPayload, Message: message}
}

// IsCode reports whether err is a provider Error with the given code
func IsCode(err error, code string) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == code
}
