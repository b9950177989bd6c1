package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syphon/internal/config"
	"syphon/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithSources(config.Source{Name: "favorites", URL: "https://example.invalid/list"}),
		testsupport.WithDevices(config.Device{Name: "walkman", Playlists: []string{"favorites"}}),
	)
	cfg.Workflow.Fetch = false

	configPath := filepath.Join(homeDir, ".config", "syphon", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nbase_dir = %q\nlog_dir = %q\n\n", cfg.Paths.BaseDir, cfg.Paths.LogDir)
	fmt.Fprintf(&b, "[library]\nmax_workers = %d\n\n", cfg.Library.MaxWorkers)
	fmt.Fprintf(&b, "[workflow]\nfetch = %t\n\n", cfg.Workflow.Fetch)
	for _, source := range cfg.Sources {
		fmt.Fprintf(&b, "[[sources]]\nname = %q\nurl = %q\n\n", source.Name, source.URL)
	}
	for _, device := range cfg.Devices {
		quoted := make([]string, 0, len(device.Playlists))
		for _, name := range device.Playlists {
			quoted = append(quoted, fmt.Sprintf("%q", name))
		}
		fmt.Fprintf(&b, "[[devices]]\nname = %q\nplaylists = [%s]\n\n", device.Name, strings.Join(quoted, ", "))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
