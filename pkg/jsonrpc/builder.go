package jsonrpc

import "encoding/json"

// NewRequest builds a Request, marshaling params if provided.
func NewRequest(id ID, method string, params interface{}) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{Jsonrpc: Version, ID: id, Method: method, Params: raw}, nil
}

// NewNotification builds a Notification, marshaling params if provided.
func NewNotification(method string, params interface{}) (*Notification, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Notification{Jsonrpc: Version, Method: method, Params: raw}, nil
}

// NewResponse builds a Response for the given request id, marshaling result.
func NewResponse(id ID, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{Jsonrpc: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an ErrorResponse from a structured Error.
func NewErrorResponse(id ID, errValue *Error) (*ErrorResponse, error) {
	rec, err := errValue.Record()
	if err != nil {
		return nil, err
	}
	return &ErrorResponse{Jsonrpc: Version, ID: id, Error: rec}, nil
}

func marshalParams(params interface{}) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return json.Marshal(params)
}
