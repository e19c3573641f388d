// Package config provides configuration types for the mcpcore server.
//
// The core is an embeddable MCP protocol engine; this package only
// configures the parts an embedder or the cmd/mcpcore binary needs to
// pick at startup: which carrier to bind, where, and how much the
// session manager, tool registry, and resource registry are allowed to
// hold at once. There is no authentication, TLS, or policy surface here.
package config

import "fmt"

// Config is the top-level configuration for an mcpcore server process.
type Config struct {
	// Transport selects the carrier: "stdio" or "http".
	Transport string `yaml:"transport" mapstructure:"transport" validate:"required,oneof=stdio http"`

	// HTTP configures the HTTP carrier. Ignored when Transport is "stdio".
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`

	// Session configures the session manager's capacity and expiry.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Registry configures the tool and resource registries.
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`

	// LogLevel sets the minimum slog level.
	// Valid values: "debug", "info", "warn" (or its alias "warning"), "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Debug enables verbose logging and span export to stderr (no metric
	// export).
	Debug bool `yaml:"debug" mapstructure:"debug"`

	// Instructions is server-supplied guidance returned from initialize.
	Instructions string `yaml:"instructions" mapstructure:"instructions"`

	// ServerName and ServerVersion identify this server in the
	// initialize handshake's ServerInfo.
	ServerName    string `yaml:"server_name" mapstructure:"server_name"`
	ServerVersion string `yaml:"server_version" mapstructure:"server_version"`
}

// HTTPConfig configures the HTTP carrier listener: --bind, --port,
// --endpoint.
type HTTPConfig struct {
	// Bind is the host to listen on (e.g. "0.0.0.0", "127.0.0.1").
	Bind string `yaml:"bind" mapstructure:"bind"`

	// Port is the TCP port to listen on.
	Port int `yaml:"port" mapstructure:"port" validate:"omitempty,min=1,max=65535"`

	// Endpoint is the URL path the MCP endpoint is served on.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AllowedOrigins enables DNS-rebinding protection; requests
	// carrying an Origin header not in this list are rejected.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Addr returns the combined host:port listen address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Bind, h.Port)
}

// SessionConfig configures internal/session.Manager.
type SessionConfig struct {
	// Capacity bounds the number of concurrent live sessions.
	Capacity int `yaml:"capacity" mapstructure:"capacity" validate:"omitempty,min=1"`

	// Timeout is the idle duration before a session expires (e.g. "30m").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`

	// CleanupInterval is how often the reaper scans for expired
	// sessions (e.g. "5m").
	CleanupInterval string `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"omitempty"`
}

// RegistryConfig configures the tool and resource registries.
type RegistryConfig struct {
	// MaxTools bounds the number of tools that may be registered.
	MaxTools int `yaml:"max_tools" mapstructure:"max_tools" validate:"omitempty,min=1"`

	// MaxResources bounds the number of resources that may be registered.
	MaxResources int `yaml:"max_resources" mapstructure:"max_resources" validate:"omitempty,min=1"`

	// StatsDB, when non-empty, enables the optional SQLite call-statistics
	// journal at this file path (empty disables it; in-memory stays the
	// default -- this journals statistics, not sessions).
	StatsDB string `yaml:"stats_db" mapstructure:"stats_db"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Transport == "" {
		c.Transport = "stdio"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ServerName == "" {
		c.ServerName = "mcpcore"
	}
	if c.ServerVersion == "" {
		c.ServerVersion = "0.1.0"
	}

	if c.HTTP.Bind == "" {
		c.HTTP.Bind = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 9943
	}
	if c.HTTP.Endpoint == "" {
		c.HTTP.Endpoint = "/mcp"
	}

	if c.Session.Timeout == "" {
		c.Session.Timeout = "30m"
	}
	if c.Session.CleanupInterval == "" {
		c.Session.CleanupInterval = "5m"
	}
	if c.Session.Capacity == 0 {
		c.Session.Capacity = 10_000
	}

	if c.Registry.MaxTools == 0 {
		c.Registry.MaxTools = 1000
	}
	if c.Registry.MaxResources == 0 {
		c.Registry.MaxResources = 1000
	}
}
