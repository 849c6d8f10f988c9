package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fanlog/internal/setup"
)

func newTransportsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transports",
		Short: "List configured transports in dispatch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			descriptions := setup.Describe(cfg)
			rows := make([][]string, 0, len(descriptions))
			for i, d := range descriptions {
				mode := "sync"
				if d.Async {
					mode = "async"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), d.ID, d.Type, mode, d.Target})
			}

			out := cmd.OutOrStdout()
			if cfg.App != "" {
				fmt.Fprintf(out, "App: %s\n", cfg.App)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "ID", "Type", "Mode", "Target"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
