// Package config provides configuration loading for the mcpcore server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for mcpcore.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, which Viper's built-in SetConfigName
// would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("mcpcore")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: MCPCORE_HTTP_BIND, MCPCORE_TRANSPORT, ...
	viper.SetEnvPrefix("MCPCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for an mcpcore config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".mcpcore"),
		"/etc/mcpcore",
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for mcpcore.yaml or
// .yml. Returns the full path of the first match, or empty string if none
// found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "mcpcore"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key so it can be overridden by an
// environment variable, e.g. MCPCORE_HTTP_BIND overrides http.bind.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("transport")
	_ = viper.BindEnv("log_level")
	_ = viper.BindEnv("debug")
	_ = viper.BindEnv("instructions")
	_ = viper.BindEnv("server_name")
	_ = viper.BindEnv("server_version")

	_ = viper.BindEnv("http.bind")
	_ = viper.BindEnv("http.port")
	_ = viper.BindEnv("http.endpoint")

	_ = viper.BindEnv("session.capacity")
	_ = viper.BindEnv("session.timeout")
	_ = viper.BindEnv("session.cleanup_interval")

	_ = viper.BindEnv("registry.max_tools")
	_ = viper.BindEnv("registry.max_resources")
	_ = viper.BindEnv("registry.stats_db")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and returns the validated Config. Caller should apply any
// CLI flag overrides before Validate runs if flags are meant to win over
// file/env values.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but does
// not validate. Use this when CLI flags may override values before
// validation runs.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file found -- continue with env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded. Returns an empty string if no config file was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
