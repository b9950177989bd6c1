package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"syphon/internal/logging"
	"syphon/internal/services"
)

// ErrUnexpectedOutput marks collaborator output that does not match its parse contract.
var ErrUnexpectedOutput = errors.New("unexpected tool output")

// Command describes one external tool invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result captures everything a collaborator produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external collaborators. Adapters depend on this interface so
// tests can substitute scripted fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner constructs a runner that logs every invocation at debug level.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logging.NewComponentLogger(logger, "toolexec")}
}

// Run executes cmd and waits for it to exit. A non-zero exit status or a
// failure to start is reported as services.ErrExternalTool; the Result is
// populated either way.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Result{ExitCode: -1}, services.Wrap(services.ErrConfiguration, "", "exec", "empty command name", nil)
	}
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("tool invoked", logging.String("command", cmd.String()), logging.String("dir", cmd.Dir))

	err := proc.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(proc, err),
	}
	logger.Debug("tool finished",
		logging.String("tool", cmd.Name),
		logging.Int("exit_code", result.ExitCode),
		logging.String("stderr", tail(result.Stderr, 512)),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, services.Wrap(
			services.ErrExternalTool,
			"",
			cmd.Name,
			fmt.Sprintf("exit status %d: %s", result.ExitCode, tail(result.Stderr, 256)),
			err,
		)
	}
	return result, nil
}

func exitCode(proc *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	if proc.ProcessState != nil {
		return proc.ProcessState.ExitCode()
	}
	return 0
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
