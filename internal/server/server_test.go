package server

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mcpcore/server/internal/config"
	"github.com/mcpcore/server/internal/resourceregistry"
	"github.com/mcpcore/server/internal/toolregistry"
)

func testConfig(transport string) *config.Config {
	cfg := &config.Config{Transport: transport}
	cfg.SetDefaults()
	cfg.HTTP.Port = 0 // let the OS pick a free port where relevant
	return cfg
}

func TestNewBuildsStdioCarrier(t *testing.T) {
	t.Parallel()

	s, err := New(testConfig("stdio"), nil, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.carrier == nil {
		t.Fatal("expected a non-nil carrier for stdio transport")
	}
}

func TestNewBuildsHTTPCarrierWithSessionManager(t *testing.T) {
	t.Parallel()

	s, err := New(testConfig("http"), nil, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.carrier == nil {
		t.Fatal("expected a non-nil carrier for http transport")
	}
	if s.sessions == nil {
		t.Fatal("expected a session manager to be built for http transport")
	}
}

func TestNewRejectsUnknownTransport(t *testing.T) {
	t.Parallel()

	cfg := testConfig("websocket")
	if _, err := New(cfg, nil, nil); err == nil {
		t.Fatal("New() expected error for unknown transport, got nil")
	}
}

func TestNewRunsRegistrar(t *testing.T) {
	t.Parallel()

	called := false
	register := func(tools *toolregistry.Registry, resources *resourceregistry.Registry) error {
		called = true
		if tools == nil || resources == nil {
			t.Fatal("registrar received nil registries")
		}
		return nil
	}

	if _, err := New(testConfig("stdio"), nil, register); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !called {
		t.Error("expected Registrar to be invoked")
	}
}

func TestNewInstallsDebugTracing(t *testing.T) {
	t.Parallel()

	cfg := testConfig("stdio")
	cfg.Debug = true

	s, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.shutdownTrace == nil {
		t.Fatal("expected debug mode to install a trace provider shutdown func")
	}
	if err := s.shutdownTrace(context.Background()); err != nil {
		t.Errorf("shutdownTrace() error: %v", err)
	}
}

func TestNewSkipsDebugTracingByDefault(t *testing.T) {
	t.Parallel()

	s, err := New(testConfig("stdio"), nil, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.shutdownTrace != nil {
		t.Error("expected no trace provider shutdown func outside debug mode")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	s, err := New(testConfig("http"), nil, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
