// Package rpc defines the JSON-RPC 2.0 envelope and the MCP payload types
// exchanged with a server over newline-delimited JSON.
//
// Every message is a single JSON object on its own line. Requests and
// responses carry an integer id; notifications omit it.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version tag carried by every message.
const Version = "2.0"

// Request is an outgoing JSON-RPC request or notification.
//
// Wire format (request):
//
//	{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}
//
// Wire format (notification, no id):
//
//	{"jsonrpc":"2.0","method":"notifications/initialized"}
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewRequest builds a request carrying the given id.
func NewRequest(id int64, method string, params any) *Request {
	return &Request{
		JSONRPC: Version,
		ID:      &id,
		Method:  method,
		Params:  params,
	}
}

// NewNotification builds a request without an id. The peer sends no response.
func NewNotification(method string, params any) *Request {
	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	}
}

// Message is an incoming JSON-RPC message before classification. Exactly one
// of the three shapes applies:
//
//   - response: id set, method empty, result or error set
//   - notification: id absent, method set
//   - request: id and method both set (peer-initiated; this client does not
//     serve requests)
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// IsResponse reports whether the message answers an outstanding request.
func (m *Message) IsResponse() bool {
	return m.ID != nil && m.Method == ""
}

// IsNotification reports whether the message is a peer notification.
func (m *Message) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// IsRequest reports whether the message is a peer-initiated request.
func (m *Message) IsRequest() bool {
	return m.ID != nil && m.Method != ""
}

// Response is an outgoing JSON-RPC response, used by the server side.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// NewResponse builds a success response for the given request id.
func NewResponse(id *int64, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// NewErrorResponse builds an error response for the given request id.
func NewErrorResponse(id *int64, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: err}
}

// Error is the JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// NewParseError creates a parse error object.
func NewParseError(data any) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error", Data: data}
}

// NewInvalidRequest creates an invalid request error object.
func NewInvalidRequest(data any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid Request", Data: data}
}

// NewMethodNotFound creates a method not found error object.
func NewMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found", Data: method}
}

// NewInvalidParams creates an invalid params error object.
func NewInvalidParams(data any) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params", Data: data}
}

// NewInternalError creates an internal error object.
func NewInternalError(message string) *Error {
	return &Error{Code: CodeInternalError, Message: message}
}
