package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FundingScanner/internal/output"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch feeds once, record announcements and send the digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			t := output.NewTable(c.out, []string{"Metric", "Count"})
			t.AddRow("fetched", fmt.Sprint(report.Fetched))
			t.AddRow("stale", fmt.Sprint(report.Stale))
			t.AddRow("already seen", fmt.Sprint(report.AlreadySeen))
			t.AddRow("accepted", fmt.Sprint(report.Accepted))
			t.AddRow("rejected", fmt.Sprint(report.Rejected))
			t.AddRow("duplicates", fmt.Sprint(report.Duplicates))
			t.AddRow("purged", fmt.Sprint(report.Purged))
			t.AddRow("digested", fmt.Sprint(report.Digested))
			return t.Render()
		},
	}
}

func newDaemonCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run on the configured interval and serve /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Daemon(cmd.Context())
		},
	}
}

func newPurgeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete seen-article rows older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "purged %d seen articles older than %d days\n", n, c.cfg.Retention.Days)
			return nil
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return output.StatsTable(c.out, st)
		},
	}
}
