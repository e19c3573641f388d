// Package jsonrpc implements the JSON-RPC 2.0 envelope shapes and codec
// used by the MCP wire protocol: request, notification, response, and
// error response, plus an id type that round-trips string, number, and
// null ids bit-for-bit.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the only accepted value of the "jsonrpc" field.
const Version = "2.0"

// Envelope is implemented by the four JSON-RPC message shapes.
type Envelope interface {
	envelope()
}

// Request is a JSON-RPC call that expects a Response or ErrorResponse.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (*Request) envelope() {}

// Notification is a JSON-RPC call that carries no id and expects no reply.
type Notification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (*Notification) envelope() {}

// Response is a successful reply to a Request.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result"`
}

func (*Response) envelope() {}

// ErrorResponse is a failed reply to a Request, or a reply to input that
// could not be parsed into a Request at all (id is then null).
type ErrorResponse struct {
	Jsonrpc string       `json:"jsonrpc"`
	ID      ID           `json:"id"`
	Error   *ErrorRecord `json:"error"`
}

func (*ErrorResponse) envelope() {}

// ErrorRecord is the JSON-RPC "error" object.
type ErrorRecord struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// idKind discriminates the three legal shapes an ID may take.
type idKind int

const (
	idKindNull idKind = iota
	idKindString
	idKindNumber
)

// ID is a JSON-RPC request/response identifier: a string, a number, or
// null. It marshals back to exactly the shape it was decoded from, so a
// numeric id stays numeric and a string id stays a string.
type ID struct {
	kind idKind
	str  string
	num  json.Number
}

// NullID returns the null identifier, used by error responses to input
// whose id could not be recovered.
func NullID() ID { return ID{kind: idKindNull} }

// StringID returns a string-valued identifier.
func StringID(s string) ID { return ID{kind: idKindString, str: s} }

// NumberID returns a number-valued identifier from its literal text.
func NumberID(n json.Number) ID { return ID{kind: idKindNumber, num: n} }

// IntID returns a number-valued identifier from an int.
func IntID(n int) ID { return ID{kind: idKindNumber, num: json.Number(fmt.Sprintf("%d", n))} }

// IsNull reports whether the identifier is JSON null.
func (id ID) IsNull() bool { return id.kind == idKindNull }

// String renders the id for logging/diagnostics; it is not the wire form.
func (id ID) String() string {
	switch id.kind {
	case idKindString:
		return id.str
	case idKindNumber:
		return id.num.String()
	default:
		return "<null>"
	}
}

// Equal reports whether two ids have the same kind and value.
func (id ID) Equal(other ID) bool {
	if id.kind != other.kind {
		return false
	}
	switch id.kind {
	case idKindString:
		return id.str == other.str
	case idKindNumber:
		return id.num.String() == other.num.String()
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler, preserving string/number/null shape.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idKindString:
		return json.Marshal(id.str)
	case idKindNumber:
		if id.num == "" {
			return []byte("0"), nil
		}
		return []byte(id.num.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler, accepting string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case string(trimmed) == "null":
		*id = ID{kind: idKindNull}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("jsonrpc: invalid string id: %w", err)
		}
		*id = ID{kind: idKindString, str: s}
		return nil
	default:
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("jsonrpc: id must be a string, number, or null: %w", err)
		}
		*id = ID{kind: idKindNumber, num: n}
		return nil
	}
}
