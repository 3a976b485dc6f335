// Command reportctl analyses reports from the shell, queues them for the
// worker, or lists past analyses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/bootstrap"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/logging"
)

type globals struct {
	configPath string
	timeout    time.Duration
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Blood test report analysis from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.PathFromEnv(), "Config file")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 10*time.Minute, "Operation timeout")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newAnalyzeCmd(g), newEnqueueCmd(g), newHistoryCmd(g))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// open loads config and wires the app. The caller must Close it.
func (g *globals) open(ctx context.Context, mode bootstrap.QueueMode) (*bootstrap.App, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	level := "warn"
	if g.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger, mode)
}

func (g *globals) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
