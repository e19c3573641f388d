package config

import (
	"strings"
	"testing"
)

// minimalValidConfig returns a minimal valid Config for testing.
func minimalValidConfig() *Config {
	cfg := &Config{Transport: "stdio"}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_ZeroConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() zero-config unexpected error: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Errorf("default transport = %q, want %q", cfg.Transport, "stdio")
	}
}

func TestValidate_RejectsUnknownTransport(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Transport = "websocket"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for unknown transport, got nil")
	}
	if !strings.Contains(err.Error(), "Transport") {
		t.Errorf("error = %q, want to contain 'Transport'", err.Error())
	}
}

func TestValidate_HTTPTransportRequiresBindAddr(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Transport = "http"
	cfg.HTTP.Bind = ""
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for http transport with no bind addr, got nil")
	}
	if !strings.Contains(err.Error(), "http.bind") {
		t.Errorf("error = %q, want to contain 'http.bind'", err.Error())
	}
}

func TestValidate_HTTPTransportWithBindAddr(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Transport = "http"
	cfg.HTTP.Bind = "127.0.0.1"
	cfg.HTTP.Port = 9090

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Transport = "http"
	cfg.HTTP.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for out-of-range port, got nil")
	}
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for unknown log level, got nil")
	}
	if !strings.Contains(err.Error(), "LogLevel") {
		t.Errorf("error = %q, want to contain 'LogLevel'", err.Error())
	}
}

func TestValidate_RejectsNegativeSessionCapacity(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Session.Capacity = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for negative session capacity, got nil")
	}
}
