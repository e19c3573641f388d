// Package server wires the protocol engine's components into a runnable
// process: it builds the tool/resource registries, a carrier for the
// configured transport, and (for the HTTP carrier) a session manager, then
// runs the boot/shutdown sequence for the embedding front-end. The core
// itself never runs a process loop; this package is what cmd/mcpcore
// links against to become one.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mcpcore/server/internal/carrier"
	"github.com/mcpcore/server/internal/config"
	"github.com/mcpcore/server/internal/dispatcher"
	"github.com/mcpcore/server/internal/platform"
	"github.com/mcpcore/server/internal/resourceregistry"
	"github.com/mcpcore/server/internal/session"
	"github.com/mcpcore/server/internal/toolregistry"
)

// Registrar lets an embedder populate the tool and resource registries
// before the server starts serving traffic.
type Registrar func(tools *toolregistry.Registry, resources *resourceregistry.Registry) error

// Server owns one running instance of the protocol engine: its registries
// and whichever carrier is currently serving them. For the stdio
// transport there is exactly one Dispatcher, one lifecycle.Machine, and
// one connection for the process's lifetime; for the HTTP transport a
// session.Manager and a Dispatcher-per-session are layered on top of the
// carrier.
type Server struct {
	cfg           *config.Config
	plat          *platform.Platform
	logger        *slog.Logger
	tools         *toolregistry.Registry
	resources     *resourceregistry.Registry
	sessions      *session.Manager
	carrier       carrier.Carrier
	shutdownTrace func(context.Context) error
}

// New builds a Server from cfg, constructing the registries and running
// register against them before any carrier is started.
func New(cfg *config.Config, plat *platform.Platform, register Registrar) (*Server, error) {
	if plat == nil {
		plat = platform.Standard(nil)
	}

	var sink *toolregistry.StatsSink
	if cfg.Registry.StatsDB != "" {
		opened, err := toolregistry.OpenStatsSink(cfg.Registry.StatsDB)
		if err != nil {
			return nil, fmt.Errorf("server: opening stats db: %w", err)
		}
		sink = opened
	}

	tools := toolregistry.NewRegistry(toolregistry.Config{Capacity: cfg.Registry.MaxTools, Sink: sink}, plat)
	resources := resourceregistry.NewRegistry(resourceregistry.Config{Capacity: cfg.Registry.MaxResources})

	if register != nil {
		if err := register(tools, resources); err != nil {
			return nil, fmt.Errorf("server: registering tools/resources: %w", err)
		}
	}

	s := &Server{
		cfg:       cfg,
		plat:      plat,
		logger:    plat.Logger,
		tools:     tools,
		resources: resources,
	}

	if cfg.Debug {
		shutdown, err := installDebugTracing(cfg)
		if err != nil {
			return nil, fmt.Errorf("server: installing debug tracing: %w", err)
		}
		s.shutdownTrace = shutdown
	}

	c, err := s.buildCarrier()
	if err != nil {
		return nil, err
	}
	s.carrier = c
	return s, nil
}

// newDispatcher builds one Dispatcher sharing this server's registries.
func (s *Server) newDispatcher() *dispatcher.Dispatcher {
	return dispatcher.New(dispatcher.Config{
		Tools:        s.tools,
		Resources:    s.resources,
		Instructions: s.cfg.Instructions,
		Logger:       s.logger,
		ServerInfo: dispatcher.ServerInfo{
			Name:    s.cfg.ServerName,
			Version: s.cfg.ServerVersion,
		},
	})
}

func (s *Server) buildCarrier() (carrier.Carrier, error) {
	switch s.cfg.Transport {
	case "stdio":
		d := s.newDispatcher()
		return carrier.NewStdioCarrier(os.Stdin, os.Stdout, d.HandleMessage, s.logger), nil

	case "http":
		timeout, err := parseDurationOrDefault(s.cfg.Session.Timeout, session.DefaultTimeout)
		if err != nil {
			return nil, fmt.Errorf("server: session.timeout: %w", err)
		}
		cleanup, err := parseDurationOrDefault(s.cfg.Session.CleanupInterval, session.DefaultCleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("server: session.cleanup_interval: %w", err)
		}
		s.sessions = session.NewManager(session.Config{
			Capacity:        s.cfg.Session.Capacity,
			Timeout:         timeout,
			CleanupInterval: cleanup,
		}, s.plat)

		return carrier.NewHTTPCarrier(carrier.HTTPConfig{
			Addr:           s.cfg.HTTP.Addr(),
			Path:           s.cfg.HTTP.Endpoint,
			AllowedOrigins: s.cfg.HTTP.AllowedOrigins,
			HandlerFactory: func() carrier.MessageHandler {
				return s.newDispatcher().HandleMessage
			},
			Sessions: s.sessions,
			Logger:   s.logger,
		}), nil

	default:
		return nil, fmt.Errorf("server: unknown transport %q", s.cfg.Transport)
	}
}

func parseDurationOrDefault(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// Run starts the session reaper (HTTP transport only) and the carrier,
// blocking until ctx is cancelled. It then performs an orderly shutdown:
// the carrier stops accepting new messages first, the reaper is joined
// next, and the registries are left to be garbage collected with the
// server -- there is nothing to drain explicitly since neither registry
// owns a background goroutine of its own.
func (s *Server) Run(ctx context.Context) error {
	if s.sessions != nil {
		s.sessions.StartReaper(ctx)
		defer s.sessions.Stop()
	}
	if s.shutdownTrace != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.shutdownTrace(shutdownCtx); err != nil {
				s.logger.Warn("trace provider shutdown failed", "error", err)
			}
		}()
	}
	return s.carrier.Start(ctx)
}
