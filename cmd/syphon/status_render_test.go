package main

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"syphon/internal/deps"
	"syphon/internal/stage"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Songs", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Songs:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	text.EnableColors()
	got := renderStatusLine("Songs", statusOK, "3", true)
	if !strings.HasPrefix(got, "\x1b[32m") || !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected green line, got %q", got)
	}
	if !strings.Contains(got, "[OK] 3") {
		t.Fatalf("expected badge in colored line, got %q", got)
	}
}

func TestShouldColorizeRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Fatal("expected NO_COLOR to disable colors")
	}
	t.Setenv("NO_COLOR", "")
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("expected non-file writers to stay plain")
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Requirement: deps.Requirement{Name: "SoX", Command: "sox"}},
		{Requirement: deps.Requirement{Name: "Encoder", Command: "ffmpeg"}, Available: true, Path: "/usr/bin/ffmpeg"},
		{Requirement: deps.Requirement{Name: "Fetcher", Command: "youtube-dl", Optional: true}, Detail: `binary "youtube-dl" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR] not available") {
		t.Fatalf("unexpected required line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Ready (ffmpeg at /usr/bin/ffmpeg)") {
		t.Fatalf("unexpected ready line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN]") {
		t.Fatalf("expected optional tool as warning: %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing tools") || strings.Contains(lines[3], "Fetcher") {
		t.Fatalf("unexpected summary line: %q", lines[3])
	}
}

func TestHealthLines(t *testing.T) {
	lines := healthLines([]stage.Health{stage.Healthy("fetch"), stage.Unhealthy("devices", "playlist %s has no producer", "x")}, false)
	if !strings.Contains(lines[0], "[OK] Ready") || !strings.Contains(lines[1], "[WARN] playlist x has no producer") {
		t.Fatalf("unexpected health lines: %v", lines)
	}
}
