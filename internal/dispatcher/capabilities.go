package dispatcher

import "encoding/json"

// Capabilities is the server-side capability set: a set of booleans that
// is the OR-merge of declared and discovered capabilities. The wire
// representation nests an empty object per advertised capability,
// matching the handshake shape MCP clients expect.
type Capabilities struct {
	Tools     bool
	Resources bool
	Prompts   bool
	Logging   bool
}

// MarshalJSON emits only the capabilities that are set, each as an empty
// object (no sub-capability negotiation in the core).
func (c Capabilities) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4)
	if c.Tools {
		m["tools"] = map[string]any{}
	}
	if c.Resources {
		m["resources"] = map[string]any{}
	}
	if c.Prompts {
		m["prompts"] = map[string]any{}
	}
	if c.Logging {
		m["logging"] = map[string]any{}
	}
	return json.Marshal(m)
}

// ClientCapabilities is the client-side parallel set: roots and sampling.
type ClientCapabilities struct {
	Roots    bool
	Sampling bool
}

// parseClientCapabilities reads the presence of the "roots"/"sampling"
// keys from an initialize request's capabilities object; absence or a
// malformed value is treated as "not declared" rather than an error.
func parseClientCapabilities(raw json.RawMessage) ClientCapabilities {
	if len(raw) == 0 {
		return ClientCapabilities{}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ClientCapabilities{}
	}
	_, roots := m["roots"]
	_, sampling := m["sampling"]
	return ClientCapabilities{Roots: roots, Sampling: sampling}
}
