package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"FundingScanner/internal/app"
	"FundingScanner/internal/config"
	"FundingScanner/internal/logging"
)

// cli holds flag values and state shared by subcommands.
type cli struct {
	cfgFile  string
	logLevel string
	dryRun   bool

	out    io.Writer
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "fundingscanner",
		Short: "Detect startup funding announcements in tech news feeds",
		Long: `fundingscanner reads RSS/Atom feeds, scores every new article for funding
signals (keywords, stage, amount, location, industry) and records each accepted
announcement once. Pending announcements are delivered as a daily or weekly digest.

Example usage:
  fundingscanner run                   # One batch, then exit
  fundingscanner run --dry-run         # In-memory store, digest printed to stdout
  fundingscanner daemon                # Run on the configured interval
  fundingscanner stats                 # Show store counters
  fundingscanner classify --title "Acme raises £10M Series A"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default $FUNDING_SCANNER_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&c.dryRun, "dry-run", false, "use an in-memory store and print the digest instead of sending it")

	root.AddCommand(
		newRunCmd(c),
		newDaemonCmd(c),
		newPurgeCmd(c),
		newStatsCmd(c),
		newClassifyCmd(c),
	)
	return root
}

func (c *cli) initConfig() error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if lvl := strings.TrimSpace(c.logLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)

	c.logger.Debug("configuration loaded",
		"database", cfg.Database.Driver,
		"sources", len(cfg.Sources),
		"threshold", cfg.Detection.Threshold,
		"digest", cfg.Pipeline.Digest,
		"dry_run", c.dryRun,
	)
	return nil
}

func (c *cli) open(ctx context.Context) (*app.Application, error) {
	return app.New(ctx, c.cfg, c.logger, app.Options{DryRun: c.dryRun, Stdout: c.out})
}
