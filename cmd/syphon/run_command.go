package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"syphon/internal/preflight"
	"syphon/internal/workerpool"
	"syphon/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipFetch bool
	var only []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every library stage once",
		Long: "Fetch new material, condition, catalog, tag, encode, build playlists " +
			"and mirror devices. Stages that find nothing to do are no-ops.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cfg)
			if !cfg.Workflow.Fetch || skipFetch {
				for i := range statuses {
					if statuses[i].Name == "Fetcher" {
						statuses[i].Optional = true
					}
				}
			}
			if missing := preflight.MissingRequired(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, status := range missing {
					names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Command))
				}
				return fmt.Errorf("missing required tools: %s; run `syphon check` for details", strings.Join(names, ", "))
			}

			return ctx.withManager(func(manager *workflow.Manager, _ *slog.Logger) error {
				summary, err := manager.Run(cmd.Context(), workflow.RunOptions{SkipFetch: skipFetch, Only: only})
				printSummary(cmd.OutOrStdout(), summary)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Do not retrieve new material this run")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Run only the named stages (comma separated)")
	return cmd
}

func printSummary(out io.Writer, summary workflow.Summary) {
	if len(summary.Stages) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Stages))
	var total workerpool.Result
	var elapsed time.Duration
	for _, s := range summary.Stages {
		result := "ok"
		if s.Err != nil {
			result = "failed"
		}
		total.Add(s.Report)
		elapsed += s.Duration
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Report.Processed),
			strconv.Itoa(s.Report.Skipped),
			strconv.Itoa(s.Report.Failed),
			s.Duration.Round(time.Millisecond).String(),
			result,
		})
	}
	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	fmt.Fprintln(out, renderTableLayout(tableLayout{
		Headers: []string{"Stage", "Processed", "Skipped", "Failed", "Duration", "Result"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		Footer: []string{
			"total",
			strconv.Itoa(total.Processed),
			strconv.Itoa(total.Skipped),
			strconv.Itoa(total.Failed),
			elapsed.Round(time.Millisecond).String(),
		},
	}))
}
