package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCmd_Registered(t *testing.T) {
	t.Parallel()

	for _, c := range rootCmd.Commands() {
		if c.Use == "config" {
			return
		}
	}
	t.Fatal("config command not registered on rootCmd")
}

func TestRunConfigInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	configInitOut = filepath.Join(dir, "mcpcore.yaml")
	defer func() { configInitOut = "mcpcore.yaml" }()

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() error: %v", err)
	}

	data, err := os.ReadFile(configInitOut)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a non-empty generated config file")
	}
}

func TestRunConfigInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	configInitOut = filepath.Join(dir, "mcpcore.yaml")
	defer func() { configInitOut = "mcpcore.yaml" }()

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("first runConfigInit() error: %v", err)
	}
	if err := runConfigInit(configInitCmd, nil); err == nil {
		t.Fatal("expected second runConfigInit() to fail on existing file")
	}
}
