package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"

	"github.com/mcpcore/server/internal/session"
)

func newTestHTTPCarrier(cfg HTTPConfig) *HTTPCarrier {
	return NewHTTPCarrier(cfg)
}

func startCarrier(t *testing.T, c *HTTPCarrier) (addr string, stop func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle(c.path, c.metricsMiddleware(c.originCheck(http.HandlerFunc(c.serveMCP))))
	server := &http.Server{Handler: mux}
	c.server = server

	go func() { _ = server.Serve(ln) }()

	return ln.Addr().String(), func() {
		_ = c.Stop(context.Background())
	}
}

func TestHTTPCarrierNotificationReturns202(t *testing.T) {
	c := newTestHTTPCarrier(HTTPConfig{
		Handler: func(ctx context.Context, raw []byte) []byte { return nil },
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	resp, err := http.Post("http://"+addr+"/mcp", "application/json",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
}

func TestHTTPCarrierRequestReturnsHandlerReply(t *testing.T) {
	reply := []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)
	c := newTestHTTPCarrier(HTTPConfig{
		Handler: func(ctx context.Context, raw []byte) []byte { return reply },
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	resp, err := http.Post("http://"+addr+"/mcp", "application/json",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	if body.String() != string(reply) {
		t.Errorf("body = %q, want %q", body.String(), string(reply))
	}
}

func TestHTTPCarrierRejectsEmptyBody(t *testing.T) {
	c := newTestHTTPCarrier(HTTPConfig{
		Handler: func(ctx context.Context, raw []byte) []byte { return nil },
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	resp, err := http.Post("http://"+addr+"/mcp", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	var env map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, hasErr := env["error"]; !hasErr {
		t.Fatal("expected a parse-error envelope for an empty body")
	}
}

func TestHTTPCarrierRejectsDisallowedOrigin(t *testing.T) {
	c := newTestHTTPCarrier(HTTPConfig{
		Handler:        func(ctx context.Context, raw []byte) []byte { return nil },
		AllowedOrigins: []string{"https://allowed.example"},
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	req, _ := http.NewRequest(http.MethodPost, "http://"+addr+"/mcp", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Origin", "https://evil.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestHTTPCarrierMintsSessionIDForNewSessions(t *testing.T) {
	mgr := session.NewManager(session.Config{}, nil)
	c := newTestHTTPCarrier(HTTPConfig{
		Sessions: mgr,
		HandlerFactory: func() MessageHandler {
			return func(ctx context.Context, raw []byte) []byte {
				return []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)
			}
		},
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	resp, err := http.Post("http://"+addr+"/mcp", "application/json",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	sid := resp.Header.Get(MCPSessionIDHeader)
	if sid == "" {
		t.Fatal("expected a minted Mcp-Session-Id header")
	}
	if mgr.Len() != 1 {
		t.Errorf("manager.Len() = %d, want 1", mgr.Len())
	}
}

func TestHTTPCarrierReusesHandlerForKnownSession(t *testing.T) {
	mgr := session.NewManager(session.Config{}, nil)
	calls := 0
	c := newTestHTTPCarrier(HTTPConfig{
		Sessions: mgr,
		HandlerFactory: func() MessageHandler {
			return func(ctx context.Context, raw []byte) []byte {
				calls++
				return []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)
			}
		},
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	first, err := http.Post("http://"+addr+"/mcp", "application/json",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	sid := first.Header.Get(MCPSessionIDHeader)
	first.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, "http://"+addr+"/mcp",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":2,"method":"ping"}`)))
	req.Header.Set(MCPSessionIDHeader, sid)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer second.Body.Close()

	if second.Header.Get(MCPSessionIDHeader) != sid {
		t.Errorf("session id changed across requests")
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
	if mgr.Len() != 1 {
		t.Errorf("manager.Len() = %d, want 1 (no duplicate session created)", mgr.Len())
	}
}

func TestHTTPCarrierDeleteTerminatesSession(t *testing.T) {
	mgr := session.NewManager(session.Config{}, nil)
	s, err := mgr.Create("")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	c := newTestHTTPCarrier(HTTPConfig{
		Sessions:       mgr,
		HandlerFactory: func() MessageHandler { return func(ctx context.Context, raw []byte) []byte { return nil } },
	})
	addr, stop := startCarrier(t, c)
	defer stop()

	req, _ := http.NewRequest(http.MethodDelete, "http://"+addr+"/mcp", nil)
	req.Header.Set(MCPSessionIDHeader, s.ID())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if mgr.Len() != 0 {
		t.Errorf("manager.Len() = %d, want 0 after delete", mgr.Len())
	}
}
