package main

import (
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/bootstrap"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := g.context()
			defer cancel()

			app, err := g.open(ctx, bootstrap.QueueOff)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := app.Service.History(ctx, limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to list (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	return cmd
}
