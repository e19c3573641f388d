package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mcpcore/server/internal/config"
	"github.com/mcpcore/server/internal/platform"
	"github.com/mcpcore/server/internal/server"
)

var (
	transportFlag string
	portFlag      int
	bindFlag      string
	endpointFlag  string
	debugFlag     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Long: `Start the mcpcore server.

The server can operate over one of two transports:

1. stdio: newline-delimited JSON-RPC over stdin/stdout, one connection
   for the process's lifetime. This is the default.

2. http: a POST /mcp endpoint (configurable path) that multiplexes
   multiple sessions by an Mcp-Session-Id header.

Examples:
  # Serve over stdio with config file settings
  mcpcore serve

  # Serve over HTTP on a specific port
  mcpcore serve --transport http --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&transportFlag, "transport", "", "transport to serve on: stdio or http (default: stdio)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "TCP port for the http transport (default: 9943)")
	serveCmd.Flags().StringVar(&bindFlag, "bind", "", "bind host for the http transport (default: 0.0.0.0)")
	serveCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "URL path for the MCP endpoint (default: /mcp)")
	serveCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable verbose logging and trace export to stderr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags win over file/env values: file < env < flag precedence.
	if transportFlag != "" {
		cfg.Transport = transportFlag
	}
	if portFlag != 0 {
		cfg.HTTP.Port = portFlag
	}
	if bindFlag != "" {
		cfg.HTTP.Bind = bindFlag
	}
	if endpointFlag != "" {
		cfg.HTTP.Endpoint = endpointFlag
	}
	if debugFlag {
		cfg.Debug = true
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	logger.Debug("log level configured", "level", cfg.LogLevel, "effective", logLevel.String())

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop() // restore default signal handling: a second Ctrl+C hard-kills
	}()

	plat := platform.Standard(logger)
	srv, err := server.New(cfg, plat, nil)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	logger.Info("starting mcpcore", "transport", cfg.Transport)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("mcpcore stopped")
	return nil
}

// parseLogLevel converts a string log level to slog.Level. Returns
// slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
