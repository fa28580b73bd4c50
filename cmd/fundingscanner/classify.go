package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"FundingScanner/internal/app"
	"FundingScanner/internal/config"
	"FundingScanner/internal/detection"
	"FundingScanner/internal/domain"
	"FundingScanner/internal/output"
	"FundingScanner/internal/patterns"
)

func newClassifyCmd(c *cli) *cobra.Command {
	var (
		title, description string
		listRules          bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show extraction, score breakdown and decision for one text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listRules {
				lib, err := patterns.New(c.cfg.Detection.Vocabulary)
				if err != nil {
					return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
				}
				return printRules(c, lib)
			}
			if strings.TrimSpace(title) == "" && strings.TrimSpace(description) == "" {
				return errors.New("one of --title or --description is required")
			}
			det, err := app.NewDetector(c.cfg)
			if err != nil {
				return err
			}
			analysis := det.Analyze(domain.Article{ID: "cli", Title: title, Description: description})
			return printAnalysis(c, analysis, det.Threshold())
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "article title")
	cmd.Flags().StringVar(&description, "description", "", "article description")
	cmd.Flags().BoolVar(&listRules, "rules", false, "list the compiled rule table and exit")
	return cmd
}

func printAnalysis(c *cli, a detection.Analysis, threshold int) error {
	res := a.Extraction

	t := output.NewTable(c.out, []string{"Field", "Value"})
	t.AddRow("company", orDash(res.CompanyName))
	t.AddRow("stage", res.FundingStage.String())
	amount := "-"
	if res.Amount != nil {
		amount = res.Amount.String()
	}
	t.AddRow("amount", amount)
	t.AddRow("funding keyword", fmt.Sprint(res.HasFundingKeyword))
	for _, loc := range res.Locations {
		t.AddRow("location", fmt.Sprintf("%s (%s)", loc.Token, loc.Tier))
	}
	for _, ind := range res.Industries {
		t.AddRow("industry", fmt.Sprintf("%s (%s)", ind.Token, ind.Tier))
	}
	if err := t.Render(); err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	scores := output.NewTable(c.out, []string{"Signal", "Points"})
	for _, contrib := range a.Score.Contributions {
		scores.AddRow(string(contrib.Signal), fmt.Sprint(contrib.Points))
	}
	scores.AddRow("total", fmt.Sprint(a.Score.Total))
	if err := scores.Render(); err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	if a.Decision.Accepted {
		fmt.Fprintf(c.out, "ACCEPT (score %d >= %d)\n", a.Score.Total, threshold)
		return nil
	}
	fmt.Fprintf(c.out, "REJECT: %s\n", a.Decision.Reason)
	return nil
}

func printRules(c *cli, lib *patterns.Library) error {
	t := output.NewTable(c.out, []string{"Category", "Label", "Rank"})
	for _, category := range patterns.Categories {
		for _, r := range lib.Rules(category) {
			t.AddRow(string(r.Category), orDash(r.Label), fmt.Sprint(r.Rank))
		}
	}
	return t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
