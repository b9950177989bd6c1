package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"syphon/internal/config"
	"syphon/internal/logs"
)

const followWait = 5 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var match string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logs.Latest(cfg.Paths.LogDir, config.LogFilePattern)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Match: match})
			if err != nil {
				return err
			}
			printLines(out, result.Lines)
			if !follow {
				return nil
			}
			return followLogs(cmd.Context(), out, cfg.Paths.LogDir, path, result.Offset, match)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&match, "match", "", "Only show lines containing this text")
	return cmd
}

// followLogs polls the current log and moves to the next daily file when one
// appears.
func followLogs(ctx context.Context, out io.Writer, dir, path string, offset int64, match string) error {
	for {
		result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Match: match, Follow: true, Wait: followWait})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		printLines(out, result.Lines)
		offset = result.Offset
		if latest, err := logs.Latest(dir, config.LogFilePattern); err == nil && latest != path {
			path, offset = latest, 0
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
