package toolexec_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syphon/internal/logging"
	"syphon/internal/services"
	"syphon/internal/toolexec"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecRunnerCapturesStreams(t *testing.T) {
	script := writeScript(t, `echo "out $1"; echo "err" >&2; pwd`)
	dir := t.TempDir()
	runner := toolexec.NewExecRunner(logging.NewNop())

	result, err := runner.Run(context.Background(), toolexec.Command{Name: script, Args: []string{"arg"}, Dir: dir})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.HasPrefix(result.Stdout, "out arg\n") {
		t.Fatalf("unexpected stdout %q", result.Stdout)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if !strings.Contains(result.Stdout, resolved) && !strings.Contains(result.Stdout, dir) {
		t.Fatalf("expected working directory in stdout, got %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" || result.ExitCode != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExecRunnerNonZeroExitIsToolFailure(t *testing.T) {
	script := writeScript(t, `echo "bad input" >&2; exit 3`)
	runner := toolexec.NewExecRunner(nil)

	result, err := runner.Run(context.Background(), toolexec.Command{Name: script})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "bad input") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := toolexec.NewExecRunner(nil)
	_, err := runner.Run(context.Background(), toolexec.Command{Name: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestExecRunnerCanceledContext(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := toolexec.NewExecRunner(nil).Run(ctx, toolexec.Command{Name: script})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
