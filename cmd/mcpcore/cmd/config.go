package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mcpcore/server/internal/config"
)

var configInitOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or generate mcpcore configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Loads configuration from file, environment, and defaults (the same
precedence "serve" uses) and prints the result as YAML, so the caller can
see exactly what would be applied without starting the server.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitOut, "out", "mcpcore.yaml", "path to write the generated config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configInitOut); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", configInitOut)
	}

	cfg := &config.Config{}
	cfg.SetDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configInitOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configInitOut, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configInitOut)
	return nil
}
