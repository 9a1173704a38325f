// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdflinks/internal/history"
)

func (c *cli) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs recorded in the history database",
		Long: `History lists the most recent runs stored in the SQLite database given
by --history-db (or history_db in the config file), newest first, with the
number of links found and the download results.`,
		Args: cobra.NoArgs,
		RunE: c.runHistory,
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to show")
	cmd.Flags().Bool("failures", false, "also list the failed downloads of each run")
	return cmd
}

func (c *cli) runHistory(cmd *cobra.Command, args []string) error {
	path := c.v.GetString("history_db")
	if path == "" {
		return errors.New("no history database configured: pass --history-db or set history_db in the config file")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	showFailures, _ := cmd.Flags().GetBool("failures")

	cmd.SilenceUsage = true

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		c.log.Warn("no runs recorded", "db", path)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tLINKS\tOK\tFAILED\tPAGE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Links,
			r.Summary.Succeeded, r.Summary.Failed, r.PageURL)
		if !showFailures {
			continue
		}
		for _, o := range r.Summary.Outcomes {
			if !o.Succeeded() {
				fmt.Fprintf(tw, "\t\t\t\t\t  %s: %s\n", o.URL, o.Reason)
			}
		}
	}
	return tw.Flush()
}
