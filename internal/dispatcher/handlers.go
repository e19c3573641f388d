package dispatcher

import (
	"encoding/json"

	"github.com/mcpcore/server/internal/lifecycle"
	"github.com/mcpcore/server/pkg/jsonrpc"
)

// SupportedProtocolVersion is the single supported date-stamped protocol
// version this server negotiates.
const SupportedProtocolVersion = "2025-03-26"

// ServerInfo identifies this server implementation in the initialize
// handshake response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ClientInfo      clientInfo      `json:"clientInfo"`
	Capabilities    json.RawMessage `json:"capabilities"`
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
	Instructions    string       `json:"instructions,omitempty"`
}

// serverCapabilities computes the server's advertised capability set from
// current registrations: dynamically, from whether any tool or resource
// is registered; logging is always advertised.
func (d *Dispatcher) serverCapabilities() Capabilities {
	return Capabilities{
		Tools:     d.tools.Len() > 0,
		Resources: d.resources.Len() > 0,
		Logging:   true,
	}
}

// handleInitialize implements the initialize built-in method.
func (d *Dispatcher) handleInitialize(params json.RawMessage) (any, *jsonrpc.Error) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, jsonrpc.NewInvalidParamsError("initialize params must be a JSON object")
		}
	}
	if p.ProtocolVersion != SupportedProtocolVersion {
		return nil, jsonrpc.NewInvalidParamsError(
			"unsupported protocolVersion " + p.ProtocolVersion + ", this server supports " + SupportedProtocolVersion)
	}

	if !d.machine.Apply(lifecycle.EventInitRequest) {
		return nil, jsonrpc.NewInvalidRequestError("initialize is not admitted in the current protocol state")
	}

	d.mu.Lock()
	d.clientName = p.ClientInfo.Name
	d.clientVersion = p.ClientInfo.Version
	d.clientCaps = parseClientCapabilities(p.Capabilities)
	d.mu.Unlock()

	d.machine.Apply(lifecycle.EventInitResponse)

	return initializeResult{
		ProtocolVersion: SupportedProtocolVersion,
		ServerInfo:      d.serverInfo,
		Capabilities:    d.serverCapabilities(),
		Instructions:    d.instructions,
	}, nil
}

// handlePing implements the ping built-in method.
func (d *Dispatcher) handlePing() (any, *jsonrpc.Error) {
	return struct{}{}, nil
}

// handleInitializedNotification advances the machine to ready: the
// initialized-notification transition out of the initialized state.
func (d *Dispatcher) handleInitializedNotification() {
	d.machine.Apply(lifecycle.EventInitializedNotification)
}
