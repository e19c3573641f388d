package jsonrpc

import "encoding/json"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is a structured JSON-RPC failure. It is the value every codec and
// dispatch function returns instead of unwinding a panic or reading a
// side-channel "last error" buffer.
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *Error) Error() string { return e.Message }

// Record converts the Error into the wire ErrorRecord shape.
func (e *Error) Record() (*ErrorRecord, error) {
	rec := &ErrorRecord{Code: e.Code, Message: e.Message}
	if e.Data != nil {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		rec.Data = data
	}
	return rec, nil
}

// NewParseError builds a -32700 error for malformed input bytes.
func NewParseError(detail string) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error: " + detail}
}

// NewInvalidRequestError builds a -32600 error for structurally invalid
// JSON-RPC shapes.
func NewInvalidRequestError(detail string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid Request: " + detail}
}

// NewMethodNotFoundError builds a -32601 error, attaching the offending
// method name in its data.
func NewMethodNotFoundError(method string) *Error {
	return &Error{
		Code:    CodeMethodNotFound,
		Message: "Method not found: " + method,
		Data:    map[string]string{"method": method},
	}
}

// NewInvalidParamsError builds a -32602 error, attaching a human-readable
// detail string.
func NewInvalidParamsError(detail string) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: "Invalid params: " + detail,
		Data:    map[string]string{"details": detail},
	}
}

// NewInternalError builds a -32603 error for unexpected core failures.
func NewInternalError(detail string) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error: " + detail}
}
