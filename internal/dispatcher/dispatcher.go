// Package dispatcher implements the protocol dispatcher: the component
// that owns a lifecycle.Machine, routes decoded JSON-RPC envelopes to
// built-in or registry-backed handlers, and always hands back a Go value
// (or nil) rather than an encoded wire sentinel. The carrier that calls
// HandleMessage decides how, or whether, to emit it.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcpcore/server/internal/lifecycle"
	"github.com/mcpcore/server/internal/resourceregistry"
	"github.com/mcpcore/server/internal/toolregistry"
	"github.com/mcpcore/server/pkg/jsonrpc"
)

const tracerName = "github.com/mcpcore/server/internal/dispatcher"

// Config holds the dependencies a Dispatcher needs to serve one logical
// connection. One Dispatcher owns one lifecycle.Machine per connection.
type Config struct {
	Tools        *toolregistry.Registry
	Resources    *resourceregistry.Registry
	ServerInfo   ServerInfo
	Instructions string
	Logger       *slog.Logger
}

// Dispatcher is the protocol dispatcher. It owns the lifecycle state
// machine for a single connection and delegates to the tool and resource
// registries it was constructed with.
type Dispatcher struct {
	machine      *lifecycle.Machine
	tools        *toolregistry.Registry
	resources    *resourceregistry.Registry
	serverInfo   ServerInfo
	instructions string
	logger       *slog.Logger
	tracer       trace.Tracer

	mu            sync.Mutex
	clientName    string
	clientVersion string
	clientCaps    ClientCapabilities
}

// New builds a Dispatcher starting in lifecycle.Uninitialized.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		machine:      lifecycle.NewMachine(),
		tools:        cfg.Tools,
		resources:    cfg.Resources,
		serverInfo:   cfg.ServerInfo,
		instructions: cfg.Instructions,
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
	}
}

// State returns the dispatcher's current protocol phase.
func (d *Dispatcher) State() lifecycle.State { return d.machine.State() }

// HandleMessage decodes one JSON-RPC message and returns the wire bytes
// to send in reply, or nil if raw decoded to a notification (no reply is
// ever sent for those) or to a response/error-response (those are replies
// from a peer, not requests directed at this dispatcher, and are logged
// and dropped). There is no third, encoded-sentinel return shape: a
// caller inspects the returned byte slice for nil, never a magic value
// inside it.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) []byte {
	envelope, parseErr := jsonrpc.Parse(raw)
	if parseErr != nil {
		return d.encodeError(jsonrpc.NullID(), parseErr)
	}

	switch msg := envelope.(type) {
	case *jsonrpc.Request:
		return d.handleRequest(ctx, msg)
	case *jsonrpc.Notification:
		d.handleNotification(ctx, msg)
		return nil
	case *jsonrpc.Response, *jsonrpc.ErrorResponse:
		d.logger.Warn("dispatcher received a reply envelope addressed to a peer, dropping")
		return nil
	default:
		return d.encodeError(jsonrpc.NullID(), jsonrpc.NewInternalError("unrecognized envelope shape"))
	}
}

func (d *Dispatcher) handleRequest(ctx context.Context, req *jsonrpc.Request) []byte {
	ctx, span := d.tracer.Start(ctx, "mcp."+req.Method, trace.WithAttributes(
		attribute.String("mcp.method", req.Method),
		attribute.String("mcp.id", req.ID.String()),
	))
	defer span.End()

	result, rpcErr := d.route(ctx, req.Method, req.Params)
	if rpcErr != nil {
		span.SetStatus(codes.Error, rpcErr.Message)
		return d.encodeError(req.ID, rpcErr)
	}

	resp, err := jsonrpc.NewResponse(req.ID, result)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return d.encodeError(req.ID, jsonrpc.NewInternalError(err.Error()))
	}
	encoded, err := jsonrpc.Encode(resp)
	if err != nil {
		return d.encodeError(req.ID, jsonrpc.NewInternalError(err.Error()))
	}
	return encoded
}

func (d *Dispatcher) handleNotification(ctx context.Context, note *jsonrpc.Notification) {
	_, span := d.tracer.Start(ctx, "mcp."+note.Method, trace.WithAttributes(
		attribute.String("mcp.method", note.Method),
	))
	defer span.End()

	switch note.Method {
	case "notifications/initialized":
		d.handleInitializedNotification()
	default:
		d.machine.Apply(lifecycle.EventNotification)
		d.logger.Debug("unhandled notification", "method", note.Method)
	}
}

// route dispatches a request method to its handler. Methods that require
// the machine to already admit ordinary traffic are rejected with
// invalid-request before the handler runs, except for initialize and ping
// which are legal outside Ready.
func (d *Dispatcher) route(ctx context.Context, method string, params []byte) (any, *jsonrpc.Error) {
	switch method {
	case "initialize":
		return d.handleInitialize(params)
	case "ping":
		return d.handlePing()
	}

	if !d.machine.AdmitsOrdinaryTraffic() {
		return nil, jsonrpc.NewInvalidRequestError("requests other than initialize/ping require the ready phase")
	}
	d.machine.Apply(lifecycle.EventRequest)

	switch method {
	case "tools/list":
		return d.handleToolsList()
	case "tools/call":
		return d.handleToolsCall(ctx, params)
	case "resources/list":
		return d.handleResourcesList()
	case "resources/read":
		return d.handleResourcesRead(params)
	case "resources/templates/list":
		return d.handleResourcesTemplatesList()
	default:
		return nil, jsonrpc.NewMethodNotFoundError(method)
	}
}

func (d *Dispatcher) encodeError(id jsonrpc.ID, rpcErr *jsonrpc.Error) []byte {
	resp, err := jsonrpc.NewErrorResponse(id, rpcErr)
	if err != nil {
		// Marshaling the error's Data field failed; fall back to a bare
		// error with no data so the caller still gets a valid envelope.
		resp, _ = jsonrpc.NewErrorResponse(id, &jsonrpc.Error{Code: rpcErr.Code, Message: rpcErr.Message})
	}
	encoded, err := jsonrpc.Encode(resp)
	if err != nil {
		d.logger.Error("failed to encode error response", "error", err)
		return nil
	}
	return encoded
}
