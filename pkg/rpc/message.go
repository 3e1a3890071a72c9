package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// emptyParams is sent by methods that take no parameters.
var emptyParams = json.RawMessage(`[]`)

// Request is a JSON-RPC 2.0 request envelope. A new one is built for every call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest wraps params for method under a fresh correlation id.
// Nil params are sent as an empty positional list.
func NewRequest(method MethodName, params json.RawMessage) Request {
	if len(params) == 0 {
		params = emptyParams
	}

	return Request{
		JSONRPC: JSONRPCVersion,
		ID:      uuid.NewString(),
		Method:  method.String(),
		Params:  params,
	}
}

// ErrorObject is the JSON-RPC error member. The method-specific business
// error, when there is one, lives in Data.
//
// Recent nodes also send a structured Name/Cause pair next to Data; both are
// kept so callers can inspect them on a RawHandlerError.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Name    string          `json:"name,omitempty"`
	Cause   json.RawMessage `json:"cause,omitempty"`
}

func (e ErrorObject) String() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// Response is a parsed JSON-RPC 2.0 response envelope: exactly one of
// Result or Error is meaningful. Error is non-nil for failure envelopes.
type Response struct {
	JSONRPC string
	ID      json.RawMessage
	Result  json.RawMessage
	Error   *ErrorObject
}

// IsError reports whether the envelope is a failure envelope.
func (r Response) IsError() bool {
	return r.Error != nil
}

// ParseResponse decodes a response envelope.
//
// The envelope tag is taken from key presence: a non-null "error" member makes
// a failure envelope, otherwise a "result" member (null included) makes a
// success envelope. Bodies that are not JSON objects wrap ErrParsingResponse;
// objects with neither member wrap ErrUnexpectedResponse.
func ParseResponse(data []byte) (Response, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrParsingResponse, err)
	}
	if members == nil {
		return Response{}, fmt.Errorf("%w: body is null", ErrParsingResponse)
	}

	res := Response{ID: members["id"]}
	if raw, ok := members["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &res.JSONRPC); err != nil {
			return Response{}, fmt.Errorf("%w: invalid jsonrpc member: %w", ErrParsingResponse, err)
		}
	}

	if raw, ok := members["error"]; ok && !isJSONNull(raw) {
		var obj ErrorObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Response{}, fmt.Errorf("%w: invalid error member: %w", ErrParsingResponse, err)
		}
		res.Error = &obj
		return res, nil
	}

	raw, ok := members["result"]
	if !ok {
		return Response{}, fmt.Errorf("%w: neither result nor error present", ErrUnexpectedResponse)
	}
	res.Result = raw

	return res, nil
}

// checkResponseID compares the response id with the request id. A missing or
// null id is accepted: servers answer with null when they could not read the
// request id.
func checkResponseID(requestID string, responseID json.RawMessage) error {
	if len(responseID) == 0 || isJSONNull(responseID) {
		return nil
	}

	var got string
	if err := json.Unmarshal(responseID, &got); err != nil || got != requestID {
		return fmt.Errorf("%w: sent %q, got %s", ErrResponseIDMismatch, requestID, responseID)
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
