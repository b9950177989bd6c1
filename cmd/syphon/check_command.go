package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"syphon/internal/deps"
	"syphon/internal/preflight"
	"syphon/internal/stage"
	"syphon/internal/workflow"
)

var errCheckFailed = errors.New("library checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, external tools and stage readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			directories := preflight.RunAll(cmd.Context(), cfg)
			statuses := preflight.CheckSystemDeps(cfg)
			var health []stage.Health
			if err := ctx.withManager(func(manager *workflow.Manager, _ *slog.Logger) error {
				health = manager.Health(cmd.Context())
				return nil
			}); err != nil {
				return err
			}

			writeSection(out, "Directories", directoryLines(directories, colorize), colorize)
			writeSection(out, "Tools", dependencyLines(statuses, colorize), colorize)
			writeSection(out, "Stages", healthLines(health, colorize), colorize)

			if len(preflight.Failed(directories)) > 0 || len(preflight.MissingRequired(statuses)) > 0 {
				return errCheckFailed
			}
			return nil
		},
	}
}

func writeSection(out io.Writer, title string, lines []string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}

func directoryLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := fmt.Sprintf("Ready (%s at %s)", dep.Command, dep.Path)
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		} else {
			missing = append(missing, dep.Name)
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing tools", statusError, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func healthLines(health []stage.Health, colorize bool) []string {
	lines := make([]string, 0, len(health))
	for _, h := range health {
		if h.Ready {
			lines = append(lines, renderStatusLine(h.Name, statusOK, "Ready", colorize))
			continue
		}
		lines = append(lines, renderStatusLine(h.Name, statusWarn, h.Detail, colorize))
	}
	return lines
}
