package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinels wrapped by the typed errors below. Match them with errors.Is.
var (
	ErrInvalidMethod      = fmt.Errorf("invalid method descriptor")
	ErrMarshalingParams   = fmt.Errorf("error marshaling params")
	ErrMarshalingRequest  = fmt.Errorf("error marshaling request")
	ErrBuildingAuthHeader = fmt.Errorf("error building auth header")
	ErrBuildingRequest    = fmt.Errorf("error building http request")
	ErrSendingRequest     = fmt.Errorf("error sending request")
	ErrReadingResponse    = fmt.Errorf("error reading response")
	ErrParsingResponse    = fmt.Errorf("error parsing response")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response")
	ErrResponseIDMismatch = fmt.Errorf("response id does not match request id")
	ErrDecodingResult     = fmt.Errorf("error decoding result")
	ErrDecodingError      = fmt.Errorf("error decoding handler error")

	ErrUnauthorized    = fmt.Errorf("unauthorized")
	ErrTooManyRequests = fmt.Errorf("too many requests")
)

// TransportOp tells on which side of the wire a transport failure happened.
type TransportOp string

const (
	// OpSend covers failures before the request bytes left the client.
	OpSend TransportOp = "send"
	// OpRecv covers failures while waiting for or reading the response.
	OpRecv TransportOp = "recv"
)

// TransportError is returned when the request could not be delivered or the
// response could not be read. Retrying is safe.
type TransportError struct {
	Op  TransportOp
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func sendError(sentinel, cause error) error {
	return &TransportError{Op: OpSend, Err: wrapCause(sentinel, cause)}
}

func recvError(sentinel, cause error) error {
	return &TransportError{Op: OpRecv, Err: wrapCause(sentinel, cause)}
}

func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	if errors.Is(cause, sentinel) {
		return cause
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// ServerError is returned for any HTTP status other than 200. The body is not
// parsed. 401 matches ErrUnauthorized and 429 matches ErrTooManyRequests.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrTooManyRequests:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// HandlerError carries a method's typed business error.
type HandlerError[E any] struct {
	Code    int
	Message string
	Err     E
}

func (e *HandlerError[E]) Error() string {
	return fmt.Sprintf("handler error %d (%s): %v", e.Code, e.Message, e.Err)
}

// Unwrap exposes the business error when it implements error.
func (e *HandlerError[E]) Unwrap() error {
	if err, ok := any(e.Err).(error); ok {
		return err
	}
	return nil
}

// RawHandlerError is returned when the server reported an error that matched
// neither the method's business error type nor its raw fallback. Data is kept
// exactly as received.
type RawHandlerError struct {
	Code    int
	Message string
	Name    string
	Data    json.RawMessage
	Cause   json.RawMessage
}

func newRawHandlerError(obj *ErrorObject) *RawHandlerError {
	return &RawHandlerError{
		Code:    obj.Code,
		Message: obj.Message,
		Name:    obj.Name,
		Data:    obj.Data,
		Cause:   obj.Cause,
	}
}

func (e *RawHandlerError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("handler error %d (%s)", e.Code, e.Message)
	}
	return fmt.Sprintf("handler error %d (%s): %s", e.Code, e.Message, e.Data)
}

// ParseError is returned when a well-formed envelope carried a payload that
// does not match the expected shape, or an id that does not match the request.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AsHandlerError extracts the typed business error from err.
func AsHandlerError[E any](err error) (E, bool) {
	var he *HandlerError[E]
	if errors.As(err, &he) {
		return he.Err, true
	}
	var zero E
	return zero, false
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServerError reports whether err is a non-200 HTTP status.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsRetryable reports whether the same call may succeed if sent again:
// transport failures, rate limiting and gateway-side 5xx statuses.
func IsRetryable(err error) bool {
	if IsTransportError(err) {
		return true
	}

	var se *ServerError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// errorClass names the failure family, for logs and span attributes.
func errorClass(err error) string {
	var (
		te  *TransportError
		se  *ServerError
		pe  *ParseError
		rhe *RawHandlerError
	)
	switch {
	case errors.As(err, &te):
		return "transport_" + string(te.Op)
	case errors.As(err, &se):
		return "server"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &rhe):
		return "raw_handler"
	default:
		return "handler"
	}
}
