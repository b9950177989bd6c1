package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"syphon/internal/devicewatch"
	"syphon/internal/logging"
	"syphon/internal/workflow"
)

const devicesStage = "devices"

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror devices whenever a block device is attached",
		Long: "Listen for kernel block device events and run the devices stage " +
			"once the burst of events for a newly attached device settles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *workflow.Manager, logger *slog.Logger) error {
				trigger := func(runCtx context.Context) error {
					_, err := manager.Run(runCtx, workflow.RunOptions{Only: []string{devicesStage}})
					return err
				}
				monitor := devicewatch.New(logging.NewComponentLogger(logger, "devicewatch"), trigger, settle)
				return monitor.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", devicewatch.DefaultSettle, "Quiet period after the last device event before syncing")
	return cmd
}
