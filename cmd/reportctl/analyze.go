package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/application/reports"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/bootstrap"
)

func newAnalyzeCmd(g *globals) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "analyze <file.pdf>",
		Short: "Run the analysis pipeline on a local report and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := g.context()
			defer cancel()

			app, err := g.open(ctx, bootstrap.QueueOff)
			if err != nil {
				return err
			}
			defer app.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := app.Service.Analyze(ctx, reports.AnalyzeCommand{
				File:     f,
				FileName: filepath.Base(args[0]),
				Query:    query,
			})
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", reports.DefaultQuery, "Question to answer about the report")
	return cmd
}
