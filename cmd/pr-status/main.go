package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pr-status",
		Short: "Show the state of your open GitHub pull requests as colored keys",
		Long: `pr-status polls GitHub for the pull requests you authored, classifies each one
(READY, PENDING, NEEDS_REVIEW, NEEDS_WORK, ERROR) and renders the result as a row of colored keys.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")

	runCmd := newRunCmd(opts)
	cmd.AddCommand(runCmd, newListCmd(opts))
	// Bare "pr-status" behaves like "pr-status run".
	cmd.RunE = runCmd.RunE
	cmd.Flags().AddFlagSet(runCmd.Flags())

	return cmd
}
