package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marcin-skalski/pr-status/internal/status"
)

type listOptions struct {
	index  int
	limit  int
	asJSON bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Classify your open PRs once and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root.configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("index") {
				res, ok, err := a.tracker.PRStatusByIndex(ctx, opts.index)
				if err != nil {
					return err
				}
				if !ok {
					if opts.asJSON {
						return writeResults(out, []status.Result{}, true)
					}
					_, err := fmt.Fprintf(out, "no open PR at index %d\n", opts.index)
					return err
				}
				return writeResults(out, []status.Result{res}, opts.asJSON)
			}

			limit := a.cfg.Limit
			if cmd.Flags().Changed("limit") {
				limit = opts.limit
			}
			results, err := a.tracker.MyPRStatuses(ctx, limit)
			if err != nil {
				return err
			}
			return writeResults(out, results, opts.asJSON)
		},
	}

	cmd.Flags().IntVar(&opts.index, "index", 0, "show only the Nth open PR (1-based)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "number of PRs to show (default from config)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	return cmd
}

func writeResults(w io.Writer, results []status.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no open PRs")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range results {
		detail := r.Message
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Status, detail, r.Link)
	}
	return tw.Flush()
}
