package http

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// TransportError means the request never produced an HTTP response:
// DNS, connect, TLS, timeout or cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	if errors.As(e.Err, &ne) {
		return ne.Timeout()
	}
	return false
}

// StatusError is a non-2xx response. Code and Message are filled when the body
// carries the API's {"code": ..., "msg": ...} error shape.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	Code       int64
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %s %s: status %d: api error %d: %s", e.Method, e.URL, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("http %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, truncate(e.Body, 256))
}

type apiError struct {
	Code    int64  `json:"code"`
	Message string `json:"msg"`
}

func newStatusError(method, url string, code int, status string, body []byte) *StatusError {
	e := &StatusError{Method: method, URL: url, StatusCode: code, Status: status, Body: body}
	var payload apiError
	if json.Unmarshal(body, &payload) == nil {
		e.Code = payload.Code
		e.Message = payload.Message
	}
	return e
}

// DecodeError means a 2xx body did not match the expected response type.
type DecodeError struct {
	Method string
	Path   string
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("http %s %s: decode response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError means the request body could not be serialized.
type EncodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("http %s %s: encode request: %v", e.Method, e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
