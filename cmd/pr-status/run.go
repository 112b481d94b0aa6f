package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/marcin-skalski/pr-status/internal/daemon"
	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/tui"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll GitHub and render PR statuses until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			useTUI := !noTUI && tuiEnabled(os.Getenv("PR_STATUS_TUI"), isTerminal(os.Stdin), isTerminal(os.Stdout))

			a, err := newApp(root.configPath, useTUI)
			if err != nil {
				return err
			}
			defer a.close()

			d := daemon.New(a.cfg, a.tracker, signal.NewLogSink(a.logger), a.logger)

			if !useTUI {
				return d.Run(cmd.Context())
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- d.Run(ctx) }()

			p := tea.NewProgram(tui.NewModel(d, a.cfg.TUI.RefreshInterval), tea.WithAltScreen(), tea.WithContext(ctx))
			_, tuiErr := p.Run()
			// Quitting the dashboard stops the poller too.
			cancel()
			runErr := <-errCh
			if tuiErr != nil && cmd.Context().Err() == nil {
				return fmt.Errorf("tui: %w", tuiErr)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "log to stderr instead of drawing the dashboard")
	return cmd
}

// tuiEnabled reports whether the dashboard should run. PR_STATUS_TUI=0
// forces it off even on a terminal.
func tuiEnabled(env string, stdinTTY, stdoutTTY bool) bool {
	if env == "0" {
		return false
	}
	return stdinTTY && stdoutTTY
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
