package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/greg-hellings/contribart/pkg/activity"
	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/report"
	consolefmt "github.com/greg-hellings/contribart/pkg/report/format"
)

type gapsFlags struct {
	remote       remoteFlags
	outputFormat string
	outputFile   string
	noColor      bool
	timeout      time.Duration
}

// newGapsCmd creates the 'gaps' subcommand.
func newGapsCmd() *cobra.Command {
	flags := &gapsFlags{}
	c := &cobra.Command{
		Use:   "gaps",
		Short: "List the days of the window without recorded activity",
		Long: strings.TrimSpace(`
Query the activity provider for the current window and list the days that
have no recorded contributions.

Formats:
  console (default) - per-month table
  json              - machine-readable JSON
  plain             - one YYYY-MM-DD date per line

Examples:
  contribart gaps --identity octocat
  contribart gaps --provider gitlab --identity someone --format json
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGaps(cmd, flags)
		},
	}

	flags.remote.register(c)
	c.Flags().StringVarP(&flags.outputFormat, "format", "f", "console", "Output format: console|json|plain")
	c.Flags().StringVarP(&flags.outputFile, "out", "o", "", "Write output to file instead of stdout")
	c.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable ANSI colors (console format)")
	c.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Timeout for the activity query")

	return c
}

func runGaps(cmd *cobra.Command, flags *gapsFlags) error {
	format := strings.ToLower(flags.outputFormat)
	switch format {
	case "console", "json", "plain":
	default:
		return fmt.Errorf("unsupported format: %s", flags.outputFormat)
	}

	cfg, err := loadConfig(cmd, &flags.remote, nil)
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}
	finder, err := buildGapFinder(cfg)
	if err != nil {
		return err
	}

	window := resolver.Resolve(now())
	gaps, err := activity.WithTimeout(finder, flags.timeout).FindGaps(context.Background(), activity.Request{
		Identity: cfg.Identity,
		Window:   window,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.outputFile != "" {
		if err := os.MkdirAll(filepath.Dir(flags.outputFile), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(flags.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rpt := &report.Report{
		Identity: cfg.Identity,
		Provider: cfg.Provider,
		Window:   window,
		Grid:     calendar.Dimension(window),
		Gaps:     gaps,
	}

	switch format {
	case "json":
		return consolefmt.RenderJSON(rpt, out)
	case "plain":
		return consolefmt.RenderDates(out, gaps)
	default:
		formatter := consolefmt.NewConsoleFormatter()
		formatter.EnableColors = !flags.noColor
		formatter.ShowSchedule = false
		if err := formatter.Render(rpt, out); err != nil {
			return fmt.Errorf("failed to render console output: %w", err)
		}
		return nil
	}
}
