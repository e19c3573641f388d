// Package carrier implements the transports that move JSON-RPC bytes
// between a peer and the protocol dispatcher, without the dispatcher
// knowing whether it is being fed by stdin/stdout or an HTTP request
// body.
package carrier

import "context"

// MessageHandler decodes one inbound message and returns the bytes to
// write back, or nil if nothing should be sent (notifications never get
// a reply). This matches dispatcher.Dispatcher.HandleMessage's shape
// exactly so a carrier can be handed a Dispatcher directly.
type MessageHandler func(ctx context.Context, raw []byte) []byte

// Carrier is the common lifecycle every transport implements: start,
// stop, and a message handler invoked per inbound message.
type Carrier interface {
	// Start begins serving; it blocks until ctx is cancelled or Stop is
	// called, returning the error that caused it to stop, or nil for a
	// clean shutdown.
	Start(ctx context.Context) error
	// Stop requests a graceful shutdown and waits for Start to return.
	Stop(ctx context.Context) error
}
