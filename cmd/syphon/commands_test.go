package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syphon/internal/testsupport"
)

func TestStagesListsDependencyOrder(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stages"}, env.configPath)
	if err != nil {
		t.Fatalf("stages: %v", err)
	}
	for _, name := range []string{"condition", "reconcile", "resolve", "pool", "encode", "playlists", "devices"} {
		requireContains(t, out, name)
	}
	if strings.Contains(out, "fetch ") {
		t.Fatalf("expected fetch omitted when disabled, got %q", out)
	}
	if strings.Index(out, "condition") > strings.Index(out, "encode") {
		t.Fatalf("expected condition listed before encode:\n%s", out)
	}
}

func TestRunOnEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Run ")
	requireContains(t, out, "playlists")

	playlist := filepath.Join(env.cfg.PlaylistsDir(), "favorites.m3u")
	if _, err := os.Stat(playlist); err != nil {
		t.Fatalf("expected empty auto playlist written: %v", err)
	}
	device := testsupport.ListDir(t, env.cfg.DeviceDir("walkman"))
	if strings.Join(device, ",") != "favorites.m3u,output" {
		t.Fatalf("unexpected device contents: %v", device)
	}
}

func TestRunRejectsUnknownStage(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run", "--only", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown stage error")
	}
}

func TestRunFailsWhenToolsMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing tool error")
	}
	requireContains(t, err.Error(), "missing required tools")
}

func TestStatusReportsAreas(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.PoolDir(), "Song _ Artist.ogg"), 16)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Catalog ==")
	requireContains(t, out, "Unresolved")
	requireContains(t, out, "pool")
	requireContains(t, out, "walkman")
}

func TestCheckReportsReadiness(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "== Tools ==")
	requireContains(t, out, "Ready (ffmpeg at ")
	requireContains(t, out, "== Stages ==")
}

func TestCheckFailsOnMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check failure")
	}
	requireContains(t, out, "Missing tools")
}

func TestLogsShowsNewestRunLog(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, filepath.Join(env.cfg.Paths.LogDir, "syphon-20200101.log"), "old line\n")
	testsupport.WriteText(t, env.cfg.LogFilePath(), "INFO [encode] stage started\nINFO [devices] stage started\n")

	out, _, err := runCLI(t, []string{"logs", "--match", "[devices]"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "INFO [devices] stage started" {
		t.Fatalf("unexpected logs output %q", out)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy_topic is not set")
}
