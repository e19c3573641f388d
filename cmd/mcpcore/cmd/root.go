// Package cmd provides the CLI commands for the mcpcore server.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpcore/server/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcpcore",
	Short: "mcpcore - an embeddable Model Context Protocol server",
	Long: `mcpcore is the reference process for the embeddable MCP protocol
engine: a JSON-RPC 2.0 codec, a lifecycle state machine, a session
manager, a tool registry, a resource registry, and a dispatcher, served
over a stdio or HTTP carrier.

Quick start:
  1. Create a config file: mcpcore.yaml
  2. Run: mcpcore serve

Configuration:
  Config is loaded from mcpcore.yaml in the current directory,
  $HOME/.mcpcore/, or /etc/mcpcore/.

  Environment variables can override config values with the MCPCORE_ prefix.
  Example: MCPCORE_HTTP_PORT=9090

Commands:
  serve       Start the server
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcpcore.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
