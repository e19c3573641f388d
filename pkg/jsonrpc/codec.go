package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxMessageSize is the default ceiling on a single message's byte
// length, about 1 MiB.
const DefaultMaxMessageSize = 1 << 20

// Kind classifies a decoded or raw message without fully validating it.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindNotification
	KindResponse
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Codec parses and emits JSON-RPC 2.0 envelopes under a configurable size
// ceiling. The zero value is ready to use with DefaultMaxMessageSize.
type Codec struct {
	// MaxMessageSize caps the length of a single message in bytes. Zero
	// means DefaultMaxMessageSize.
	MaxMessageSize int
}

func (c Codec) maxSize() int {
	if c.MaxMessageSize <= 0 {
		return DefaultMaxMessageSize
	}
	return c.MaxMessageSize
}

// Parse decodes raw bytes into one of the four Envelope shapes, or returns
// a structured Error describing why the bytes are not a valid JSON-RPC 2.0
// message.
func (c Codec) Parse(data []byte) (Envelope, *Error) {
	if len(data) > c.maxSize() {
		return nil, NewParseError(fmt.Sprintf("message of %d bytes exceeds the %d byte ceiling", len(data), c.maxSize()))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, NewParseError(err.Error())
	}

	verRaw, ok := fields["jsonrpc"]
	if !ok {
		return nil, NewInvalidRequestError(`missing "jsonrpc" field`)
	}
	var version string
	if err := json.Unmarshal(verRaw, &version); err != nil || version != Version {
		return nil, NewInvalidRequestError(`"jsonrpc" must be the literal "2.0"`)
	}

	methodRaw, hasMethod := fields["method"]
	idRaw, hasID := fields["id"]
	resultRaw, hasResult := fields["result"]
	errRaw, hasError := fields["error"]

	if hasMethod {
		var method string
		if err := json.Unmarshal(methodRaw, &method); err != nil {
			return nil, NewInvalidRequestError(`"method" must be a string`)
		}
		params := fields["params"]

		if hasID {
			id, err := decodeID(idRaw)
			if err != nil {
				return nil, NewInvalidRequestError(err.Error())
			}
			return &Request{Jsonrpc: Version, ID: id, Method: method, Params: params}, nil
		}
		return &Notification{Jsonrpc: Version, Method: method, Params: params}, nil
	}

	// No method: this must be a response or an error response.
	if hasResult == hasError {
		return nil, NewInvalidRequestError(`a message without "method" must carry exactly one of "result" or "error"`)
	}
	if !hasID {
		return nil, NewInvalidRequestError(`a response must carry an "id"`)
	}
	id, err := decodeID(idRaw)
	if err != nil {
		return nil, NewInvalidRequestError(err.Error())
	}

	if hasError {
		var rec ErrorRecord
		if err := json.Unmarshal(errRaw, &rec); err != nil {
			return nil, NewInvalidRequestError(`"error" is not a valid error object`)
		}
		return &ErrorResponse{Jsonrpc: Version, ID: id, Error: &rec}, nil
	}
	return &Response{Jsonrpc: Version, ID: id, Result: resultRaw}, nil
}

func decodeID(raw json.RawMessage) (ID, error) {
	var id ID
	if err := id.UnmarshalJSON(raw); err != nil {
		return ID{}, err
	}
	return id, nil
}

// Encode serializes an Envelope to its wire form. Field order places
// "jsonrpc" first; absent optional fields (params) are omitted, never
// emitted as null.
func (c Codec) Encode(e Envelope) ([]byte, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Classify inspects raw bytes and reports which of the four envelope
// shapes they resemble, without fully validating them. It returns
// KindUnknown if the bytes are not even a JSON object.
func Classify(data []byte) Kind {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return KindUnknown
	}
	_, hasMethod := fields["method"]
	_, hasID := fields["id"]
	_, hasError := fields["error"]

	switch {
	case hasMethod && hasID:
		return KindRequest
	case hasMethod:
		return KindNotification
	case hasError:
		return KindError
	default:
		return KindResponse
	}
}

// Validate checks structural invariants of an already-constructed
// Envelope before it is encoded: the jsonrpc field must be "2.0", a
// request/notification must carry a non-empty method, and an error response
// must carry an error object. A response's id is not checked, so a null id
// is echoed as null.
func Validate(e Envelope) *Error {
	switch v := e.(type) {
	case *Request:
		if v.Jsonrpc != Version {
			return NewInvalidRequestError(`"jsonrpc" must be "2.0"`)
		}
		if v.Method == "" {
			return NewInvalidRequestError("request method must not be empty")
		}
	case *Notification:
		if v.Jsonrpc != Version {
			return NewInvalidRequestError(`"jsonrpc" must be "2.0"`)
		}
		if v.Method == "" {
			return NewInvalidRequestError("notification method must not be empty")
		}
	case *Response:
		if v.Jsonrpc != Version {
			return NewInvalidRequestError(`"jsonrpc" must be "2.0"`)
		}
	case *ErrorResponse:
		if v.Jsonrpc != Version {
			return NewInvalidRequestError(`"jsonrpc" must be "2.0"`)
		}
		if v.Error == nil {
			return NewInvalidRequestError("error response must carry an error object")
		}
	default:
		return NewInternalError(fmt.Sprintf("unknown envelope type %T", e))
	}
	return nil
}

// Package-level convenience wrappers over a zero-value (default-sized) Codec.

// Parse decodes raw bytes using DefaultMaxMessageSize.
func Parse(data []byte) (Envelope, *Error) { return Codec{}.Parse(data) }

// Encode serializes an Envelope using the default codec.
func Encode(e Envelope) ([]byte, error) { return Codec{}.Encode(e) }
