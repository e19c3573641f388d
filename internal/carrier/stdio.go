package carrier

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mcpcore/server/pkg/jsonrpc"
)

// StdioCarrier carries newline-delimited JSON-RPC messages over a reader
// and writer, conventionally os.Stdin/os.Stdout. Each line read from in
// is handed to Handler; its reply, if any, is written back as a single
// line terminated with "\n".
type StdioCarrier struct {
	in      io.Reader
	out     io.Writer
	Handler MessageHandler
	logger  *slog.Logger

	writeMu sync.Mutex
	done    chan struct{}
}

// NewStdioCarrier builds a StdioCarrier over the given reader/writer. A
// nil logger falls back to slog.Default().
func NewStdioCarrier(in io.Reader, out io.Writer, handler MessageHandler, logger *slog.Logger) *StdioCarrier {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioCarrier{in: in, out: out, Handler: handler, logger: logger, done: make(chan struct{})}
}

// Start reads newline-delimited messages until ctx is cancelled or the
// reader reaches EOF. Each message is decoded and dispatched synchronously,
// one at a time, preserving request order: stdio models a single
// connection, so no concurrent dispatch is required.
func (c *StdioCarrier) Start(ctx context.Context) error {
	defer close(c.done)

	scanner := bufio.NewScanner(c.in)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, jsonrpc.DefaultMaxMessageSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		raw := append([]byte(nil), line...)

		reply := c.Handler(ctx, raw)
		if reply == nil {
			continue
		}
		if err := c.write(reply); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Error("stdio carrier scan error", "error", err)
		return err
	}
	return nil
}

func (c *StdioCarrier) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.out.Write(payload); err != nil {
		return err
	}
	_, err := c.out.Write([]byte("\n"))
	return err
}

// Stop waits for Start to observe ctx cancellation or input EOF. Stdio has
// no listener socket to close; the caller is expected to cancel the
// context it passed to Start.
func (c *StdioCarrier) Stop(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
