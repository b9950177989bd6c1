package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"syphon/internal/workflow"
)

func newStagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the stage order and what each stage reads and writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *workflow.Manager, _ *slog.Logger) error {
				graph, err := manager.Graph(false)
				if err != nil {
					return err
				}
				var rows [][]string
				for i, level := range graph.Levels() {
					for _, h := range level {
						rows = append(rows, []string{
							strconv.Itoa(i + 1),
							h.Name(),
							strings.Join(h.Inputs(), ", "),
							strings.Join(h.Outputs(), ", "),
							strings.Join(graph.DependsOn(h.Name()), ", "),
						})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Level", "Stage", "Reads", "Writes", "After"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
}
