package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"syphon/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog counts and library area sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			status, err := workflow.Inspect(cmd.Context(), cfg, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Catalog", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range catalogLines(status, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(status.Areas))
			for _, area := range status.Areas {
				rows = append(rows, []string{area.Name, strconv.Itoa(area.Files), area.Path})
			}
			fmt.Fprintln(out, renderTable([]string{"Area", "Files", "Path"}, rows, []columnAlignment{alignLeft, alignRight}))

			if len(status.Devices) > 0 {
				rows = rows[:0]
				for _, device := range status.Devices {
					rows = append(rows, []string{device.Name, strconv.Itoa(device.Files), device.Path})
				}
				fmt.Fprintln(out, renderTable([]string{"Device", "Files", "Path"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}
}

func catalogLines(status workflow.Status, colorize bool) []string {
	stats := status.Catalog
	unresolved := statusOK
	if stats.Unresolved > 0 {
		unresolved = statusWarn
	}
	return []string{
		renderStatusLine("Songs", statusInfo, strconv.Itoa(stats.Songs), colorize),
		renderStatusLine("Resolved", statusInfo, strconv.Itoa(stats.Resolved), colorize),
		renderStatusLine("Unresolved", unresolved, strconv.Itoa(stats.Unresolved), colorize),
		renderStatusLine("Playlists", statusInfo, strconv.Itoa(stats.Playlists), colorize),
	}
}
