package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpcore/server/internal/session"
	"github.com/mcpcore/server/pkg/jsonrpc"
)

// DefaultAddr is the HTTP carrier's default bind address, localhost-only.
const DefaultAddr = "127.0.0.1:8080"

// MCPSessionIDHeader is the header used to correlate a request with a
// previously established session.
const MCPSessionIDHeader = "Mcp-Session-Id"

const maxRequestBodySize = jsonrpc.DefaultMaxMessageSize

// HTTPConfig configures an HTTPCarrier.
type HTTPConfig struct {
	// Addr is the listen address. Defaults to DefaultAddr.
	Addr string
	// Path is the MCP endpoint path. Defaults to "/mcp".
	Path string
	// AllowedOrigins enables DNS-rebinding protection when non-empty; an
	// empty slice blocks every request that carries an Origin header.
	AllowedOrigins []string
	// Handler serves every request when Sessions is nil (single-session
	// mode, e.g. one dispatcher shared by every caller).
	Handler MessageHandler
	// HandlerFactory, together with Sessions, builds one MessageHandler
	// per HTTP-level session the first time its session id is seen.
	HandlerFactory func() MessageHandler
	Sessions       *session.Manager
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// HTTPCarrier is an HTTP POST carrier: one MCP endpoint accepting
// JSON-RPC request bodies.
type HTTPCarrier struct {
	addr           string
	path           string
	allowedOrigins map[string]bool
	handler        MessageHandler
	handlerFactory func() MessageHandler
	sessions       *session.Manager
	registry       *prometheus.Registry
	metrics        *Metrics
	logger         *slog.Logger

	server *http.Server

	mu         sync.Mutex
	perSession map[string]MessageHandler
}

// NewHTTPCarrier builds an HTTPCarrier from cfg.
func NewHTTPCarrier(cfg HTTPConfig) *HTTPCarrier {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	path := cfg.Path
	if path == "" {
		path = "/mcp"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}
	return &HTTPCarrier{
		addr:           addr,
		path:           path,
		allowedOrigins: origins,
		handler:        cfg.Handler,
		handlerFactory: cfg.HandlerFactory,
		sessions:       cfg.Sessions,
		registry:       reg,
		metrics:        NewMetrics(reg),
		logger:         logger,
		perSession:     make(map[string]MessageHandler),
	}
}

// Start builds the HTTP mux, listens on addr, and blocks until ctx is
// cancelled or the server fails.
func (c *HTTPCarrier) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(c.path, c.metricsMiddleware(c.originCheck(http.HandlerFunc(c.serveMCP))))
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{Addr: c.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("starting HTTP carrier", "addr", c.addr, "path", c.path)
		err := c.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return c.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the HTTP server.
func (c *HTTPCarrier) Stop(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.server.Shutdown(shutdownCtx)
}

// originCheck rejects cross-origin requests unless the Origin header
// matches an allowlist entry, guarding against DNS-rebinding attacks
// against a carrier bound to a non-loopback address.
func (c *HTTPCarrier) originCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !c.allowedOrigins[origin] {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *HTTPCarrier) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.metrics.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		c.metrics.RequestsTotal.WithLabelValues(r.Method, statusClass(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "server_error"
	case code >= 400:
		return "client_error"
	default:
		return "ok"
	}
}

func (c *HTTPCarrier) serveMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.handlePost(w, r)
	case http.MethodDelete:
		c.handleDelete(w, r)
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+MCPSessionIDHeader)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (c *HTTPCarrier) handlePost(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
		writeParseError(w, "content type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeParseError(w, "request body too large or unreadable")
		return
	}
	if len(body) == 0 {
		writeParseError(w, "empty request body")
		return
	}

	var idCheck struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(body, &idCheck)
	isNotification := idCheck.ID == nil

	handler, sessionID := c.resolveHandler(r)
	reply := handler(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	if sessionID != "" {
		w.Header().Set(MCPSessionIDHeader, sessionID)
	}

	if isNotification || reply == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}

// resolveHandler returns the MessageHandler for this request and the
// session id to echo back, if any. In single-handler mode (Sessions or
// HandlerFactory nil) every request shares one handler and no session id
// is minted. Otherwise each Mcp-Session-Id gets its own Dispatcher
// instance, lazily created on first contact and reused for the session's
// lifetime; the session manager owns liveness/expiry, this carrier only
// owns the id-to-handler mapping.
func (c *HTTPCarrier) resolveHandler(r *http.Request) (MessageHandler, string) {
	if c.sessions == nil || c.handlerFactory == nil {
		return c.handler, ""
	}

	if sessionID := r.Header.Get(MCPSessionIDHeader); sessionID != "" {
		if hd, err := c.sessions.Find(sessionID); err == nil {
			c.sessions.Touch(hd.Session())
			h := c.lookupHandler(sessionID)
			hd.Close()
			if h != nil {
				return h, sessionID
			}
		}
	}

	s, err := c.sessions.Create("")
	if err != nil {
		c.logger.Warn("failed to create HTTP session, falling back to shared handler", "error", err)
		return c.handler, ""
	}
	h := c.handlerFactory()
	c.storeHandler(s.ID(), h)
	c.metrics.ActiveSessions.Set(float64(c.sessions.ActiveCount()))
	return h, s.ID()
}

func (c *HTTPCarrier) lookupHandler(id string) MessageHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perSession[id]
}

func (c *HTTPCarrier) storeHandler(id string, h MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perSession[id] = h
}

func (c *HTTPCarrier) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(MCPSessionIDHeader)
	if sessionID == "" {
		http.Error(w, MCPSessionIDHeader+" header required", http.StatusBadRequest)
		return
	}
	if c.sessions == nil {
		http.Error(w, "sessions are not enabled on this carrier", http.StatusNotFound)
		return
	}
	if err := c.sessions.Remove(sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	c.mu.Lock()
	delete(c.perSession, sessionID)
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func writeParseError(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp, err := jsonrpc.NewErrorResponse(jsonrpc.NullID(), jsonrpc.NewParseError(detail))
	if err != nil {
		return
	}
	encoded, err := jsonrpc.Encode(resp)
	if err != nil {
		return
	}
	_, _ = w.Write(encoded)
}
